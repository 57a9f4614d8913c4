package epidemic

import "math/rand/v2"

// Genotype is the pathogen strain label carried by an infected node. It only
// influences transmission when mutation is enabled.
type Genotype int8

const (
	GenotypeLow  Genotype = -1
	GenotypeMid  Genotype = 0
	GenotypeHigh Genotype = 1
)

// DefaultGenotype is the genotype of the seed infection.
const DefaultGenotype = GenotypeLow

// genotypeInfectivity is the per-contact transmission probability of each
// genotype under the mutation model, indexed by genotype+1.
var genotypeInfectivity = [3]float64{0.45, 0.35, 0.95}

// Infectivity returns the transmission probability of g under the mutation model.
func (g Genotype) Infectivity() float64 {
	return genotypeInfectivity[g+1]
}

// Valid reports whether g is one of the three genotypes.
func (g Genotype) Valid() bool {
	return g >= GenotypeLow && g <= GenotypeHigh
}

// AttemptTransmission runs one Bernoulli trial for an infection attempt by a
// node carrying genotype. With mutation enabled the success probability is
// the genotype's infectivity, otherwise it is beta.
func AttemptTransmission(beta float64, mutation bool, genotype Genotype, rng *rand.Rand) bool {
	if mutation {
		return rng.Float64() < genotype.Infectivity()
	}
	return rng.Float64() < beta
}

// Mutate performs one step of the genotype Markov chain with mutation rate
// chi. The end states move to the middle with probability chi; the middle
// moves to either end with probability chi/2 each.
func Mutate(g Genotype, chi float64, rng *rand.Rand) Genotype {
	u := rng.Float64()
	switch g {
	case GenotypeLow:
		if u < chi {
			return GenotypeMid
		}
	case GenotypeMid:
		if u < chi/2 {
			return GenotypeLow
		}
		if u < chi {
			return GenotypeHigh
		}
	case GenotypeHigh:
		if u < chi {
			return GenotypeMid
		}
	}
	return g
}
