// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package pcnet is the overall repository for a discrete-time simulator of
spiking and predictive-coding units.  The top level has no functional code;
everything is organized into the following packages:

* comp: the shared unit model: named, shaped state slots, the simulation
clock, snapshots of persisted state, and size reports.

* randkey: splittable pseudorandom keys threaded explicitly through every
stochastic step.

* bernoulli, lif, rpe, expkern: the spiking units: a rate-constrained
Bernoulli spike encoder, leaky integrate-and-fire neurons with adaptive
thresholds, a reward prediction error tracker, and an exponential
synaptic kernel.

* actfun: activation functions and their derivatives.

* precis: a learned covariance and the precision derived from it.

* graph: the predictive-coding propagation graph of state and error nodes
connected by cables, including the precision-weighted error node.

* sched, simlog, snapshot: an ordered step driver, per-step logs written as
CSV, and file and SQLite stores for persisted unit state.

* examples/pcsim: a command-line program running both kinds of simulation
from a yaml config.
*/
package pcnet
