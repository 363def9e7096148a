// Package message defines the conversation message model shared by the
// agent engine.
//
// A Message is a tagged variant identified by its Role. The ordered message
// slice held in a thread's checkpoint is the model's context window, so
// insertion order is semantically meaningful. Sanitize builds the view that
// is safe to send to a model without mutating the persisted history.
package message
