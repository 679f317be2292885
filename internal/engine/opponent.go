package engine

import "math/rand"

// Robot opponents, ids from 9000000001 upward.
var robotNames = []string{
	"Abelo", "meron bekele", "dawit", "mulugeta", "ted",
	"yonas", "liya", "Bereket Alemu", "Eden", "Samuel Yimer",
	"rahel", "Daniel Negash", "Bethel", "Kidus Wolde", "Natan",
}

const robotBaseID int64 = 9000000001

func pickOpponent(rng *rand.Rand) Participant {
	i := rng.Intn(len(robotNames))
	return Participant{
		UserID: robotBaseID + int64(i),
		Name:   robotNames[i],
		Robot:  true,
	}
}
