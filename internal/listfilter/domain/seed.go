package domain

import "math/rand/v2"

// maxRandomSeed acota la semilla a 8 dígitos.
const maxRandomSeed = 100_000_000

// SeedSource genera semillas para el orden aleatorio.
type SeedSource interface {
	NewSeed() int
}

// SeedSourceFunc adapta una función a SeedSource.
type SeedSourceFunc func() int

func (f SeedSourceFunc) NewSeed() int { return f() }

// RandomSeedSource usa el generador global de math/rand/v2.
type RandomSeedSource struct{}

func (RandomSeedSource) NewSeed() int {
	return rand.IntN(maxRandomSeed)
}

// FixedSeedSource devuelve siempre la misma semilla. Útil en tests.
func FixedSeedSource(seed int) SeedSource {
	return SeedSourceFunc(func() int { return seed })
}
