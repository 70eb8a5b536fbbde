package uuid

import gonanoid "github.com/matoous/go-nanoid"

// Generator UUID generator interface
type Generator interface {
	Generate() (string, error)
}

// SessionAlphabet ids are used as URL segments and redis key parts
const SessionAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NanoIDGenerator random ids used for learning sessions
type NanoIDGenerator struct {
	Length   int
	Alphabet string
}

var _ Generator = &NanoIDGenerator{}

// NewNanoIDGenerator create a new `NanoIDGenerator` drawing from SessionAlphabet
func NewNanoIDGenerator(length int) *NanoIDGenerator {
	if length < 1 {
		panic("length must be larger than 1")
	}
	return &NanoIDGenerator{Length: length, Alphabet: SessionAlphabet}
}

// Generate generate UUID
func (ns *NanoIDGenerator) Generate() (string, error) {
	return gonanoid.Generate(ns.Alphabet, ns.Length)
}
