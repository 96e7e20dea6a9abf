package interchange

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/okian/flowfit/internal/domain/model"
)

// Column prefixes of the wide layout: one row per respondent and
// skill_<domain>, challenge_<domain>, time_<domain> per domain.
const (
	colName     = "name"
	prefixSkill = "skill_"
	prefixChall = "challenge_"
	prefixTime  = "time_"
)

type domainCols struct {
	id                     string
	skill, challenge, time int // -1 when the column is absent
}

// DecodeCSV reads the wide layout. A domain whose cells are all empty is
// treated as not rated; a rated domain needs all three cells. Errors name the
// physical line of the offending record.
func DecodeCSV(r io.Reader) ([]model.Profile, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: csv: %w", ErrMalformed, err)
	}
	headerLine, _ := cr.FieldPos(0)
	nameCol, cols, err := parseHeader(headerLine, header)
	if err != nil {
		return nil, err
	}

	var out []model.Profile
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: csv: %w", ErrMalformed, err)
		}
		if blank(rec) {
			continue
		}
		line, _ := cr.FieldPos(0)
		p, err := parseRow(line, rec, nameCol, cols)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func parseHeader(line int, header []string) (int, []domainCols, error) {
	nameCol := -1
	byID := map[string]*domainCols{}
	var order []string
	get := func(id string) *domainCols {
		if dc, ok := byID[id]; ok {
			return dc
		}
		dc := &domainCols{id: id, skill: -1, challenge: -1, time: -1}
		byID[id] = dc
		order = append(order, id)
		return dc
	}
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		switch {
		case h == colName:
			nameCol = i
		case strings.HasPrefix(h, prefixSkill):
			get(strings.TrimPrefix(h, prefixSkill)).skill = i
		case strings.HasPrefix(h, prefixChall):
			get(strings.TrimPrefix(h, prefixChall)).challenge = i
		case strings.HasPrefix(h, prefixTime):
			get(strings.TrimPrefix(h, prefixTime)).time = i
		case h == "":
		default:
			return 0, nil, fmt.Errorf("%w: csv line %d: unexpected column %q", ErrMalformed, line, h)
		}
	}
	cols := make([]domainCols, 0, len(order))
	for _, id := range order {
		dc := byID[id]
		if id == "" || dc.skill < 0 || dc.challenge < 0 || dc.time < 0 {
			return 0, nil, fmt.Errorf("%w: csv line %d: domain %q needs skill_, challenge_ and time_ columns", ErrMalformed, line, id)
		}
		cols = append(cols, *dc)
	}
	return nameCol, cols, nil
}

func parseRow(line int, rec []string, nameCol int, cols []domainCols) (model.Profile, error) {
	var p model.Profile
	if nameCol >= 0 {
		p.Name = strings.TrimSpace(cell(rec, nameCol))
	}
	for _, dc := range cols {
		s, c, t := cell(rec, dc.skill), cell(rec, dc.challenge), cell(rec, dc.time)
		if s == "" && c == "" && t == "" {
			continue
		}
		if s == "" || c == "" || t == "" {
			return model.Profile{}, fmt.Errorf("%w: csv line %d: domain %q needs skill, challenge and time values", ErrMalformed, line, dc.id)
		}
		r := model.Rating{Domain: dc.id}
		var err error
		if r.Skill, err = atoi(line, prefixSkill+dc.id, s); err != nil {
			return model.Profile{}, err
		}
		if r.Challenge, err = atoi(line, prefixChall+dc.id, c); err != nil {
			return model.Profile{}, err
		}
		if r.TimePerception, err = atoi(line, prefixTime+dc.id, t); err != nil {
			return model.Profile{}, err
		}
		p.Ratings = append(p.Ratings, r)
	}
	return p, nil
}

// EncodeCSV writes profiles in the wide layout with one column triple per
// domain in the given order. Unrated domains leave empty cells.
func EncodeCSV(w io.Writer, domains []string, profiles []model.Profile) error {
	cw := csv.NewWriter(w)
	header := make([]string, 0, 1+3*len(domains))
	header = append(header, colName)
	for _, d := range domains {
		header = append(header, prefixSkill+d, prefixChall+d, prefixTime+d)
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	row := make([]string, len(header))
	for _, p := range profiles {
		row[0] = p.Name
		for i, d := range domains {
			base := 1 + 3*i
			if r, ok := p.Rating(d); ok {
				row[base] = strconv.Itoa(r.Skill)
				row[base+1] = strconv.Itoa(r.Challenge)
				row[base+2] = strconv.Itoa(r.TimePerception)
			} else {
				row[base], row[base+1], row[base+2] = "", "", ""
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func atoi(line int, col, v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: csv line %d: %s=%q is not an integer", ErrMalformed, line, col, v)
	}
	return n, nil
}
