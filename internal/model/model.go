// Package model holds the catalog entities and the payloads used to create
// and change them.
package model
