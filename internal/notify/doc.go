// Package notify keeps the stack of toast notifications shown over the UI.
//
// Actions that hit the backend show a loading toast, then replace it by id
// with the outcome. Success toasts expire after two seconds, errors after
// four; loading toasts stay until replaced.
package notify
