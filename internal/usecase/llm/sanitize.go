package llm

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/kailas-cloud/usersearch/internal/domain"
	"github.com/kailas-cloud/usersearch/internal/domain/query"
)

// Keys of the model's JSON answer.
const (
	keyGender     = "gender"
	keyNameSubstr = "name_substr"
	keyStartsWith = "starts_with_mode"
	keyParity     = "name_length_parity"
	keyProfilePic = "has_profile_pic"
	keySortBy     = "sort_by"
	keySortOrder  = "sort_order"
)

var knownKeys = []string{keyGender, keyNameSubstr, keyStartsWith, keyParity, keyProfilePic, keySortBy, keySortOrder}

// notNames are words models put into name_substr that never name a person.
var notNames = map[string]bool{
	"male": true, "female": true, "other": true, "fmale": true, "femal": true,
	"non-binary": true, "nonbinary": true,
	"user": true, "users": true, "all": true, "null": true, "none": true, "": true,
	"newest": true, "oldest": true, "longest": true, "shortest": true, "alphabetical": true,
	"sorted": true, "recent": true, "latest": true, "first": true, "last": true,
	"profile": true, "picture": true, "photo": true, "avatar": true, "pic": true,
	"with": true, "without": true, "ends": true, "order": true,
}

// sanitize turns a model JSON object into filter fields. Each bad field is
// dropped and reported in rejected; the whole answer fails only when it is
// not a JSON object or carries none of the expected keys.
func sanitize(raw string) (fields query.Fields, rejected []error, err error) {
	if raw == "" || !gjson.Valid(raw) {
		return query.Fields{}, nil, fmt.Errorf("%w: no JSON object in reply", domain.ErrModelResponseInvalid)
	}
	doc := gjson.Parse(raw)
	if !doc.IsObject() {
		return query.Fields{}, nil, fmt.Errorf("%w: reply is not an object", domain.ErrModelResponseInvalid)
	}

	vals := doc.Map()
	found := false
	for _, k := range knownKeys {
		if _, ok := vals[k]; ok {
			found = true
			break
		}
	}
	if !found {
		return query.Fields{}, nil, fmt.Errorf("%w: no filter keys in reply", domain.ErrModelResponseInvalid)
	}

	reject := func(field string, v gjson.Result) {
		rejected = append(rejected, domain.NewFieldError(field, v.Raw))
	}

	if v := vals[keyGender]; isSet(v) {
		g, perr := query.ParseGender(v.String())
		if v.Type != gjson.String || perr != nil {
			reject(keyGender, v)
		} else {
			fields.Gender = &g
		}
	}

	if v := vals[keyNameSubstr]; isSet(v) {
		name := strings.Trim(strings.TrimSpace(v.String()), `'"[]`)
		if v.Type != gjson.String || notNames[strings.ToLower(name)] {
			reject(keyNameSubstr, v)
		} else {
			fields.NameSubstr = &name
		}
	}

	if v := vals[keyStartsWith]; isSet(v) {
		b, ok := parseBool(v)
		if !ok {
			reject(keyStartsWith, v)
		}
		fields.StartsWith = b
	}

	if v := vals[keyParity]; isSet(v) {
		p, perr := query.ParseParity(v.String())
		if v.Type != gjson.String || perr != nil {
			reject(keyParity, v)
		} else {
			fields.Parity = &p
		}
	}

	if v := vals[keyProfilePic]; isSet(v) {
		if b, ok := parseBool(v); ok {
			fields.HasProfilePic = &b
		} else {
			reject(keyProfilePic, v)
		}
	}

	if v := vals[keySortBy]; isSet(v) {
		s, perr := query.ParseSortField(v.String())
		if v.Type != gjson.String || perr != nil {
			reject(keySortBy, v)
		} else {
			fields.SortBy = &s
		}
	}

	order := query.Desc
	if v := vals[keySortOrder]; isSet(v) {
		o, perr := query.ParseSortOrder(v.String())
		if v.Type != gjson.String || perr != nil {
			reject(keySortOrder, v)
		} else {
			order = o
		}
	}
	fields.SortOrder = &order

	return fields, rejected, nil
}

func isSet(v gjson.Result) bool {
	return v.Exists() && v.Type != gjson.Null
}

// parseBool accepts JSON booleans and the strings true/yes/1, false/no/0.
func parseBool(v gjson.Result) (bool, bool) {
	switch v.Type {
	case gjson.True:
		return true, true
	case gjson.False:
		return false, true
	case gjson.String:
		switch strings.ToLower(strings.TrimSpace(v.Str)) {
		case "true", "yes", "1":
			return true, true
		case "false", "no", "0":
			return false, true
		}
	}
	return false, false
}
