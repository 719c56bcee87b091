// Package evaluator implements the pluggable Module Evaluator capability
// (§4.E "invoke the module body"): a narrow interface that takes
// transformed CJS source plus a module Context (require whitelist, env,
// exports sink) and populates that exports sink. The default
// implementation embeds a Yaegi Go interpreter, sandboxed to a whitelist
// of stdlib packages, mirroring the pack's sandboxed-tool-execution
// pattern. A host may substitute a real JS isolate behind the same
// Evaluator interface without changing the dispatcher.
package evaluator
