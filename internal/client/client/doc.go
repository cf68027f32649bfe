// Package client holds the client-side collaborator contracts: the remote
// API client (identity, document store, presigned blob access) and the
// opener for the local queue database with its repositories.
package client
