package lib

import (
	"log"

	"uniforum/storage"
)

// ClaimSnapshots records userId as the owner of the local cache snapshots.
// When they were written for a different user, reset runs first so none of
// that user's posts, tombstones or settings carry over. It reports whether
// reset ran.
func ClaimSnapshots(store storage.Storage, userId string, reset func()) bool {
	var owner string
	_, err := store.Load(storage.KeyOwner, &owner)
	if err != nil {
		log.Printf("Error reading snapshot owner, treating snapshots as foreign: %v\n", err)
		owner = "?"
	}

	reclaimed := false
	if owner != "" && owner != userId {
		log.Printf("Local snapshots belong to another user, clearing them\n")
		reset()
		reclaimed = true
	}

	err = store.Save(storage.KeyOwner, userId)
	if err != nil {
		log.Printf("Error saving snapshot owner: %v\n", err)
	}
	return reclaimed
}
