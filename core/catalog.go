package core

// ChallengeSlots is the number of challenge slots in the catalog
const ChallengeSlots = 3

// ChallengeDefinition returns the fixed challenge for a slot in 1..ChallengeSlots.
//
// The catalog is static: every caller receives the same grid and answer for a
// slot, so a solved answer can be replayed by anyone who learns it. This is a
// known limitation of the gate, not a source of randomness to rely on.
func ChallengeDefinition(slot int) (Challenge, error) {
	switch slot {
	case 1:
		return rotationChallenge(), nil
	case 2:
		return sequenceChallenge(), nil
	case 3:
		return transformationChallenge(), nil
	default:
		return Challenge{}, ErrInvalidSlot
	}
}

func rotationChallenge() Challenge {
	return Challenge{
		ID:   "rotation_1",
		Grid: Grid{{Red, Blue}, {Blue, Red}},
		Options: []Grid{
			{{Blue, Red}, {Red, Blue}}, // 90 degree rotation
			{{Red, Red}, {Blue, Blue}},
			{{Green, Blue}, {Blue, Green}},
			{{Red, Green}, {Green, Red}},
		},
		CorrectAnswer: 0,
		Type:          ChallengeRotation,
	}
}

func sequenceChallenge() Challenge {
	return Challenge{
		ID:   "sequence_1",
		Grid: Grid{{Yellow, Yellow}, {Yellow, Yellow}},
		Options: []Grid{
			{{Red, Red}, {Red, Red}},
			{{Red, Red}, {Red, Red}}, // next colour in R -> B -> G -> Y
			{{Blue, Blue}, {Blue, Blue}},
			{{Green, Green}, {Green, Green}},
		},
		CorrectAnswer: 1,
		Type:          ChallengeSequence,
	}
}

func transformationChallenge() Challenge {
	return Challenge{
		ID:   "transform_1",
		Grid: Grid{{Green, Red}, {Yellow, Blue}},
		Options: []Grid{
			{{Green, Yellow}, {Red, Blue}},
			{{Red, Green}, {Blue, Yellow}},
			{{Blue, Yellow}, {Red, Green}}, // diagonal swap
			{{Yellow, Blue}, {Green, Red}},
		},
		CorrectAnswer: 2,
		Type:          ChallengeTransformation,
	}
}
