// Package corda reconstructs context-specific metabolic networks with the
// cost optimization reaction dependency assessment (CORDA) procedure.
//
// A Reconstructor owns a working copy of a reference network in which every
// reaction is split into a forward and a backward flux variable, each carrying
// a confidence level:
//
//	-1 exclude   no evidence, or evidence against the reaction
//	 0 unknown   no information
//	 1 low       weak evidence
//	 2 medium    moderate evidence
//	 3 high      included
//
// Support Search (Associated) forces flux through a target variable and
// minimizes a confidence-derived penalty, returning the uncertain or excluded
// variables the cheapest solution relies on. Repeating the solve with the
// penalties of already found variables inflated surfaces alternative routes.
//
// Build runs three phases over the confidence map:
//
//  1. support every high confidence reaction and promote what it needs;
//  2. promote excluded reactions needed by at least Support low or medium
//     reactions, then promote low or medium reactions that carry flux on
//     their own while unconfirmed excluded reactions are blocked;
//  3. block the remaining low or medium reactions, demote unknown ones and
//     re-support everything at high confidence.
//
// After Build, Included and Reconstruction project the result back onto the
// original reactions. A Reconstructor mutates its LP in place; it must not be
// shared between goroutines and can be built only once.
package corda
