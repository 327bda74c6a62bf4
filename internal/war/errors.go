package war

import "errors"

// Domain errors for the Vibe War lifecycle. Handlers check these with
// errors.Is and translate them into HTTP responses; the scheduler logs
// them and waits for its next trigger.
var (
	// ErrInsufficientCandidates means fewer than two distinct users
	// currently have a visible vibe, so no war can be seeded.
	ErrInsufficientCandidates = errors.New("not enough users with visible vibes to start a war")

	// ErrWarNotFound means the referenced war id does not exist.
	ErrWarNotFound = errors.New("war not found")

	// ErrWarNotStarted and ErrWarEnded both mean the war is not active;
	// they are distinct so voters learn which side of the window they hit.
	ErrWarNotStarted = errors.New("this war hasn't started yet")
	ErrWarEnded      = errors.New("this war has already ended")

	// ErrAlreadyVoted enforces one vote per user per war.
	ErrAlreadyVoted = errors.New("you have already voted in this war")

	// ErrSelfVote keeps contestants from voting in their own war.
	ErrSelfVote = errors.New("you can't vote in your own war")
)
