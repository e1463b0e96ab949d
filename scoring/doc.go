// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package scoring contains the statistical model used to assign confidence
// values to germline variant calls: phred-scale conversions, a Poisson
// sequencing-error model, a strand-bias log-likelihood-ratio test, and the
// named feature vectors consumed by empirical variant scoring (EVS).
//
// Everything in this package is a pure function of its inputs; callers may
// freely evaluate loci in parallel as long as each locus is scored by a
// single goroutine.
package scoring
