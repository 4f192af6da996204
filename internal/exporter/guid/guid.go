// Package guid генерирует 22-символьные идентификаторы IFC (GlobalId).
package guid

import (
	"crypto/rand"
	mrand "math/rand/v2"
)

// ============================================================
// Alphabet
// ============================================================

// Alphabet содержит 64 допустимых символа IFC GlobalId в каноническом порядке.
const Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz_$"

// Length идентификатора в символах.
const Length = 22

const (
	fnvOffset = 2166136261
	fnvPrime  = 16777619
	// zeroSeed заменяет нулевой хеш: xorshift из нуля не выходит.
	zeroSeed = 0x9E3779B9
)

// encode переводит 22 случайных значения в символы алфавита.
// Первый символ берётся по модулю 4: 22 символа по 6 бит дают 132 бита, а GUID
// занимает 128, поэтому старшему символу достаются только 2 бита.
func encode(values [Length]byte) string {
	var out [Length]byte
	for i, v := range values {
		mask := byte(63)
		if i == 0 {
			mask = 3
		}
		out[i] = Alphabet[v&mask]
	}
	return string(out[:])
}

// ============================================================
// Random
// ============================================================

// New возвращает случайный идентификатор из crypto/rand.
// Если системный источник недоступен, используется math/rand/v2.
func New() string {
	var values [Length]byte
	if _, err := rand.Read(values[:]); err != nil {
		for i := range values {
			values[i] = byte(mrand.IntN(64))
		}
	}
	return encode(values)
}

// ============================================================
// Deterministic
// ============================================================

// Hash считает 32-битный FNV-1a от seed; ноль заменяется константой.
func Hash(seed string) uint32 {
	h := uint32(fnvOffset)
	for i := 0; i < len(seed); i++ {
		h ^= uint32(seed[i])
		h *= fnvPrime
	}
	if h == 0 {
		h = zeroSeed
	}
	return h
}

// Deterministic возвращает идентификатор, зависящий только от seed.
// Один и тот же seed всегда даёт тот же GlobalId, в том числе между процессами.
func Deterministic(seed string) string {
	x := Hash(seed)

	var values [Length]byte
	for i := range values {
		x ^= x << 13
		x ^= x >> 17
		x ^= x << 5
		values[i] = byte(x & 63)
	}
	return encode(values)
}
