// Package format defines the FileFormat collaborator shape used to read and
// write documents of named arrays, and ArrayDocument, a JSON format that
// keeps small arrays inline and moves large ones into an h5store container.
//
// Formats report failures twice: as returned errors, and as accumulated
// text from Errors for callers that only show a message to a user.
package format
