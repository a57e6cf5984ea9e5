package detect

import (
	"github.com/kailas-cloud/usersearch/internal/domain/query"
)

// Parity needs "odd" or "even" tied to name-length phrasing. Both at once is
// ambiguous and abstains.
func Parity(in Input, found query.Fields) Output {
	if found.Parity != nil || !in.HasAny(lengthWords) {
		return Output{}
	}
	odd, even := in.Has("odd"), in.Has("even")
	switch {
	case odd && !even:
		return Output{Fields: query.Fields{Parity: query.Ptr(query.ParityOdd)}}
	case even && !odd:
		return Output{Fields: query.Fields{Parity: query.Ptr(query.ParityEven)}}
	}
	return Output{}
}
