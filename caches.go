package ember

// Purger is the contract of the collaborator caches the Director can drain:
// texture cache, sprite-frame cache, asset-location cache. Their internals
// live with the application.
type Purger interface {
	// PurgeUnused drops entries nothing references anymore.
	PurgeUnused()
	// PurgeAll drops everything.
	PurgeAll()
}
