// Package cli implements the interactive GophNotes terminal client.
//
// The client is a line-oriented REPL. After login the user can list, view,
// create and edit notes, work with the trash and ask the assistant for
// summaries and tags. The note editor autosaves: edits are written to the
// local SQLite store and pushed to the server in the background, and an
// interrupted edit can be recovered from its local draft for a day.
package cli
