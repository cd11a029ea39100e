// Package capture defines capture units and the registry that orders them.
//
// A capture unit contributes fields to the record of one wrapped-function
// invocation. Units run either before the call (PreCall) or after it
// (PostCall) and write through the record.Record they are given:
//
//	hostname := capture.Func("hostname", capture.PreCall,
//	    func(ctx context.Context, rec *record.Record, inv *capture.Invocation) {
//	        name, err := os.Hostname()
//	        if err != nil {
//	            rec.Set("hostname", nil)
//	            return
//	        }
//	        rec.Set("hostname", name)
//	    })
//
// Units never return errors. Expected absence (a missing tool, an unset
// variable, no cluster access) is recorded as a nil value, and a unit that
// panics is recovered by the caller and logged.
//
// # Mixins and Resolution
//
// Units are grouped into named Mixins. A Registry composes mixins and
// resolves them once into a Plan with the following precedence:
//
//  1. Defaults() (function_name) runs first.
//  2. Mixins run in composition order, units in declaration order.
//  3. A unit whose name is already registered replaces the earlier unit in
//     place, so composing the same mixin twice runs it once.
//
// Units implementing FieldDeclarer expose the fields they write, which lets
// Plan.Collisions report overlapping units before anything runs.
//
// # Invocation State
//
// Units that need state across the call (a profile started before and
// stopped after) keep it in the Invocation scratch area with Stash and
// Unstash. Scratch values are never serialized.
//
// # Catalog
//
// Catalog maps mixin names to constructors so that callers such as the CLI
// can select units by name. See package capture/catalog for the default set.
package capture
