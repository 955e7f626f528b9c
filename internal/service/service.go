// Package service contains the business logic layer of the API.
//
// THE THREE LAYERS:
//
//	Handler (HTTP)    → decodes requests, writes responses
//	Service (rules)   → validates input, generates ids and slugs, orchestrates
//	Repository (data) → one transactional statement group per operation
//
// Services accept plain input structs, never *http.Request, and return
// apperror values instead of status codes. The same methods could back a CLI
// or a background job without change.
//
// Every service takes its repositories as interfaces, so the tests in this
// package run against in-memory fakes.
package service

import (
	"time"

	"github.com/sakif/conduit/internal/validation"
)

// validate is shared by every service. validator.Validate caches struct
// metadata and is safe for concurrent use.
var validate = validation.New()

// utcNow is the default clock. Services keep it in a field so tests can pin time.
func utcNow() time.Time {
	return time.Now().UTC()
}
