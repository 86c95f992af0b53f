// Package exchange owns the tcpsum wire contract.
//
// Ownership boundary:
// - request/response entities and their JSON encoding
// - the single bounded read and single write used per message
// - the error taxonomy shared by responder and initiator
package exchange
