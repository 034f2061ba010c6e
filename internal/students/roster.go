package students

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"night-attendance-backend/internal/platform/auth"
)

// 名簿シートの見出し → 列名
var rosterHeaders = map[string]string{
	"student reg. no": "reg_no",
	"student reg no":  "reg_no",
	"reg no":          "reg_no",
	"reg_no":          "reg_no",
	"student's name":  "name",
	"student name":    "name",
	"name":            "name",
	"email":           "email",
	"room no.":        "room_no",
	"room no":         "room_no",
	"room_no":         "room_no",
	"hostel":          "hostel",
	"mobile number":   "mobile",
	"mobile":          "mobile",
	"floor":           "floor",
	"seater":          "seater",
	"ac/nac":          "ac_status",
	"ac_status":       "ac_status",
}

var (
	ErrNoRosterHeader = errors.New("roster: no header row with reg no and name columns")
	nonAlnum          = regexp.MustCompile(`[^a-z0-9]`)
	spaces            = regexp.MustCompile(`\s+`)
)

// ParseRoster reads a hostel roster sheet exported as CSV. Title rows above the
// header are skipped, rows without a name or reg no are ignored and the first
// occurrence of a reg no wins. Students without an email column get
// <first name>[n]@emailDomain.
func ParseRoster(r io.Reader, emailDomain string) ([]RosterEntry, error) {
	// Excel は BOM 付き UTF-8 / UTF-16 で書き出すことがある
	cr := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	var cols map[string]int
	for cols == nil {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil, ErrNoRosterHeader
		}
		if err != nil {
			return nil, fmt.Errorf("roster: %w", err)
		}
		cols = headerIndex(rec)
	}

	var (
		out    []RosterEntry
		seen   = map[string]bool{}
		emails = map[string]int{}
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("roster: %w", err)
		}

		get := func(col string) string {
			i, ok := cols[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		e := RosterEntry{
			RegNo:    get("reg_no"),
			Name:     get("name"),
			Email:    get("email"),
			RoomNo:   get("room_no"),
			Hostel:   get("hostel"),
			Mobile:   get("mobile"),
			Floor:    get("floor"),
			Seater:   get("seater"),
			ACStatus: get("ac_status"),
		}
		if e.Name == "" || e.RegNo == "" || e.RegNo == "0" || seen[e.RegNo] {
			continue
		}
		seen[e.RegNo] = true

		if e.Email != "" {
			e.Email = auth.NormalizeEmail(e.Email)
		} else {
			e.Email = generatedEmail(e, emails, emailDomain)
		}
		out = append(out, e)
	}
	return out, nil
}

func headerIndex(rec []string) map[string]int {
	cols := map[string]int{}
	for i, h := range rec {
		key := spaces.ReplaceAllString(strings.ToLower(strings.TrimSpace(h)), " ")
		if col, ok := rosterHeaders[key]; ok {
			if _, dup := cols[col]; !dup {
				cols[col] = i
			}
		}
	}
	_, hasReg := cols["reg_no"]
	_, hasName := cols["name"]
	if !hasReg || !hasName {
		return nil
	}
	return cols
}

func generatedEmail(e RosterEntry, used map[string]int, domain string) string {
	local := nonAlnum.ReplaceAllString(strings.ToLower(strings.Fields(e.Name)[0]), "")
	if local == "" {
		local = nonAlnum.ReplaceAllString(strings.ToLower(e.RegNo), "")
	}
	n, taken := used[local]
	if !taken {
		used[local] = 0
		return auth.NormalizeEmail(local + "@" + domain)
	}
	n++
	used[local] = n
	return auth.NormalizeEmail(fmt.Sprintf("%s%d@%s", local, n, domain))
}
