// Package ir defines the intermediate representation consumed by the
// lowering pipeline.
//
// The IR is the in-memory form of a single shader's program between the
// binary-format front end and hardware code generation. It is designed to be:
//   - Mutable in place: lowering passes rewrite it destructively
//   - Instruction-level: function bodies are basic blocks of instructions,
//     the shape lowering transforms operate on
//   - Stage-aware: every compilation targets exactly one shader stage
//
// # Structure
//
// The IR is organized around a Module type that contains:
//   - Types: All type definitions used in the shader
//   - Constants: Module-scope constant values
//   - GlobalVariables: Module-scope variables (uniforms, storage, push
//     constants, private globals)
//   - Functions: All function definitions
//   - EntryPoints: Shader entry points with stage information
//
// # Lifecycle
//
// A Module is produced fully formed by the front end, mutated by the
// lowering pipeline, and then handed to code generation. It is never
// destroyed mid-pipeline; a failed compilation leaves the Module in an
// unspecified partially-lowered state that must not be reused.
package ir
