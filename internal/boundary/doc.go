// Package boundary declares the interfaces of the engine's external
// collaborators: the tokenizer, the phantom identity scheme and the
// self-balancing token tree.
//
// None of these are implemented here. The engine consumes them as opaque
// operations, and the Unimplemented stand-ins fail loudly so a deployment
// that forgets to wire a real implementation can never silently succeed
// with fabricated data.
package boundary
