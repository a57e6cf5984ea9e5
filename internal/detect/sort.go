package detect

import (
	"github.com/kailas-cloud/usersearch/internal/domain/query"
)

// Sort detects ordering intent. Length superlatives win over temporal cues,
// temporal over alphabetical, alphabetical over an explicit "sort by X".
// A standalone ascending or descending cue overrides the implied direction.
func Sort(in Input, found query.Fields) Output {
	if found.SortBy != nil {
		return Output{}
	}

	field, order, ok := lengthSort(in)
	if !ok {
		field, order, ok = temporalSort(in)
	}
	if !ok {
		field, order, ok = alphabeticalSort(in)
	}
	if !ok {
		field, order, ok = explicitSort(in)
	}
	if !ok {
		return Output{}
	}

	switch {
	case in.HasAny(ascCues):
		order = query.Asc
	case in.HasAny(descCues):
		order = query.Desc
	}
	return Output{Fields: query.Fields{SortBy: query.Ptr(field), SortOrder: query.Ptr(order)}}
}

func lengthSort(in Input) (query.SortField, query.SortOrder, bool) {
	mentioned := in.HasAny(usernameWords) || in.HasAny(nameWords) || in.HasPhrase("most characters")
	field := query.SortNameLength
	if in.HasAny(usernameWords) {
		field = query.SortUsernameLength
	}

	switch {
	case in.Has("longest") || (mentioned && in.HasAny(longWords)):
		return field, query.Desc, true
	case in.Has("shortest") || (mentioned && in.HasAny(shortWords)):
		return field, query.Asc, true
	}
	return "", "", false
}

func temporalSort(in Input) (query.SortField, query.SortOrder, bool) {
	switch {
	case in.HasAny(newestWords) || in.HasPhrase("most newest", "recently created"):
		return query.SortCreatedAt, query.Desc, true
	case in.HasAny(oldestWords) || in.HasPhrase("first created", "created first"):
		return query.SortCreatedAt, query.Asc, true
	}
	return "", "", false
}

func alphabeticalSort(in Input) (query.SortField, query.SortOrder, bool) {
	field := query.SortName
	if in.HasAny(usernameWords) {
		field = query.SortUsername
	}

	switch {
	case in.Has("z-a") || in.HasPhrase("reverse alphabetical", "reverse alphabetically", "z to a"):
		return field, query.Desc, true
	case in.Has("alphabetical", "alphabetically", "a-z") || in.HasPhrase("a to z"):
		return field, query.Asc, true
	}
	return "", "", false
}

var explicitFields = map[string]struct {
	field query.SortField
	order query.SortOrder
}{
	"username":  {query.SortUsername, query.Asc},
	"usernames": {query.SortUsername, query.Asc},
	"name":      {query.SortName, query.Asc},
	"names":     {query.SortName, query.Asc},
	"date":      {query.SortCreatedAt, query.Desc},
	"created":   {query.SortCreatedAt, query.Desc},
	"creation":  {query.SortCreatedAt, query.Desc},
	"time":      {query.SortCreatedAt, query.Desc},
	"signup":    {query.SortCreatedAt, query.Desc},
}

func explicitSort(in Input) (query.SortField, query.SortOrder, bool) {
	end := in.PhraseEnd("sort by", "sorted by", "order by", "ordered by")
	if end < 0 {
		return "", "", false
	}
	if f, ok := explicitFields[in.token(end)]; ok {
		return f.field, f.order, true
	}
	return "", "", false
}
