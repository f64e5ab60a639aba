// Package service contains the business logic.
//
// It sits between the smoke runner and the repository layer.
// It validates payloads, performs catalog operations, and calls
// repository methods to interact with the data.
package service
