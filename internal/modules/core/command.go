package core

// Unit is the response type of commands that have no payload.
type Unit struct{}
