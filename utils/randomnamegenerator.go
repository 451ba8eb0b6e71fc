package utils

import (
	"math/rand"
	"strconv"

	"github.com/Pallinder/go-randomdata"
)

// RandomNameGenerator produces silly names not present in taken
type RandomNameGenerator struct {
	rnd *rand.Rand
}

func NewRandomNameGenerator(seed int64) *RandomNameGenerator {
	return &RandomNameGenerator{rnd: rand.New(rand.NewSource(seed))}
}

func (rng *RandomNameGenerator) RandomName(taken func(name string) bool) string {
	randomdata.CustomRand(rng.rnd)
	for i := 0; i < 32; i++ {
		name := randomdata.SillyName()
		// avoid duplicate names
		if !taken(name) {
			return name
		}
	}
	base := randomdata.SillyName()
	for i := 2; ; i++ {
		if name := base + strconv.Itoa(i); !taken(name) {
			return name
		}
	}
}
