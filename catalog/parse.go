package catalog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

const lineLen = 69

// Parse decodes NORAD catalog text in either the two-line or the
// three-line (name line first) layout. Name lines may carry the "0 " prefix
// used by some providers. Records keep their catalog order. Any malformed
// record fails the whole parse with a *ParseError.
func Parse(r io.Reader) ([]Record, error) {
	var (
		records []Record
		name    string
		named   bool
		line1   string
		l1No    int
		lineNo  int
	)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		switch {
		case line1 != "":
			if !strings.HasPrefix(line, "2 ") {
				return nil, &ParseError{Line: lineNo, Err: fmt.Errorf("%w: expected line 2 after line %d", ErrMalformed, l1No)}
			}
			rec, err := decode(name, line1, line, l1No, lineNo)
			if err != nil {
				return nil, err
			}
			if !named {
				rec.Name = fmt.Sprintf("%05d", rec.SatelliteNumber)
			}
			records = append(records, rec)
			name, named, line1 = "", false, ""

		case strings.HasPrefix(line, "1 "):
			if len(line) != lineLen {
				return nil, &ParseError{Line: lineNo, Err: fmt.Errorf("%w: line 1 must be %d characters, got %d", ErrMalformed, lineLen, len(line))}
			}
			line1, l1No = line, lineNo

		case strings.HasPrefix(line, "2 "):
			return nil, &ParseError{Line: lineNo, Err: fmt.Errorf("%w: line 2 without line 1", ErrMalformed)}

		default:
			if named {
				return nil, &ParseError{Line: lineNo, Err: fmt.Errorf("%w: name line %q not followed by an element set", ErrMalformed, name)}
			}
			name = strings.TrimSpace(strings.TrimPrefix(line, "0 "))
			named = true
		}
	}
	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, &ParseError{Line: lineNo + 1, Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
		}
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	if line1 != "" {
		return nil, &ParseError{Line: lineNo, Err: fmt.Errorf("%w: missing line 2 after line %d", ErrMalformed, l1No)}
	}
	if named {
		return nil, &ParseError{Line: lineNo, Err: fmt.Errorf("%w: trailing name line %q", ErrMalformed, name)}
	}
	return records, nil
}

func decode(name, line1, line2 string, l1No, l2No int) (Record, error) {
	rec := Record{Name: name, Line1: line1, Line2: line2}

	if len(line2) != lineLen {
		return rec, &ParseError{Line: l2No, Err: fmt.Errorf("%w: line 2 must be %d characters, got %d", ErrMalformed, lineLen, len(line2))}
	}
	if err := verifyChecksum(line1); err != nil {
		return rec, &ParseError{Line: l1No, Err: err}
	}
	if err := verifyChecksum(line2); err != nil {
		return rec, &ParseError{Line: l2No, Err: err}
	}
	if err := rec.parseLine1(line1); err != nil {
		return rec, &ParseError{Line: l1No, Err: err}
	}
	if err := rec.parseLine2(line2); err != nil {
		return rec, &ParseError{Line: l2No, Err: err}
	}
	return rec, nil
}

func (rec *Record) parseLine1(line string) error {
	var err error
	if rec.SatelliteNumber, err = atoi(line[2:7], "satellite number"); err != nil {
		return err
	}
	rec.Classification = rune(line[7])
	rec.International = strings.TrimSpace(line[9:17])

	yy, err := atoi(line[18:20], "epoch year")
	if err != nil {
		return err
	}
	// Two-digit years below 57 are 20YY.
	if yy < 57 {
		rec.EpochYear = 2000 + yy
	} else {
		rec.EpochYear = 1900 + yy
	}

	if rec.EpochDay, err = parseFloat(line[20:32], "epoch day"); err != nil {
		return err
	}
	if rec.MeanMotionDot, err = parseFloat(leadingZero(line[33:43]), "mean motion dot"); err != nil {
		return err
	}
	if rec.MeanMotionDot2, err = impliedDecimal(line[44:50], line[50:52], "mean motion dot 2"); err != nil {
		return err
	}
	if rec.Bstar, err = impliedDecimal(line[53:59], line[59:61], "B*"); err != nil {
		return err
	}
	if rec.ElementNumber, err = atoi(line[64:68], "element number"); err != nil {
		return err
	}
	return nil
}

func (rec *Record) parseLine2(line string) error {
	n, err := atoi(line[2:7], "satellite number")
	if err != nil {
		return err
	}
	if n != rec.SatelliteNumber {
		return fmt.Errorf("%w: line 2 satellite number %d does not match line 1 (%d)", ErrMalformed, n, rec.SatelliteNumber)
	}

	if rec.Inclination, err = parseFloat(line[8:16], "inclination"); err != nil {
		return err
	}
	if rec.RightAscension, err = parseFloat(line[17:25], "right ascension"); err != nil {
		return err
	}
	if rec.Eccentricity, err = parseFloat("0."+strings.TrimSpace(line[26:33]), "eccentricity"); err != nil {
		return err
	}
	if rec.ArgOfPerigee, err = parseFloat(line[34:42], "argument of perigee"); err != nil {
		return err
	}
	if rec.MeanAnomaly, err = parseFloat(line[43:51], "mean anomaly"); err != nil {
		return err
	}
	if rec.MeanMotion, err = parseFloat(line[52:63], "mean motion"); err != nil {
		return err
	}
	if rec.RevolutionNumber, err = atoi(line[63:68], "revolution number"); err != nil {
		return err
	}
	return nil
}

// checksum is the modulo-10 sum of the first 68 columns, digits counting
// their value and '-' counting one.
func checksum(line string) int {
	sum := 0
	for _, c := range line[:lineLen-1] {
		switch {
		case c >= '0' && c <= '9':
			sum += int(c - '0')
		case c == '-':
			sum++
		}
	}
	return sum % 10
}

func verifyChecksum(line string) error {
	want := line[lineLen-1]
	if want < '0' || want > '9' {
		return fmt.Errorf("%w: checksum column %q is not a digit", ErrMalformed, want)
	}
	if got := checksum(line); got != int(want-'0') {
		return fmt.Errorf("%w: line %c computed %d, record says %c", ErrChecksum, line[0], got, want)
	}
	return nil
}

func atoi(field, what string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(field))
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q", ErrMalformed, what, field)
	}
	return v, nil
}

func parseFloat(field, what string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q", ErrMalformed, what, field)
	}
	return v, nil
}

// leadingZero turns ".123" and "-.123" into "0.123" and "-0.123".
func leadingZero(field string) string {
	s := strings.TrimSpace(field)
	switch {
	case strings.HasPrefix(s, "."):
		return "0" + s
	case strings.HasPrefix(s, "-."):
		return "-0" + s[1:]
	case strings.HasPrefix(s, "+."):
		return "0" + s[1:]
	}
	return s
}

// impliedDecimal decodes the " 12345-3" layout: mantissa 0.12345, exponent -3.
func impliedDecimal(mantissa, exponent, what string) (float64, error) {
	m, err := parseFloat(mantissa, what+" mantissa")
	if err != nil {
		return 0, err
	}
	e, err := atoi(exponent, what+" exponent")
	if err != nil {
		return 0, err
	}
	return m * 1e-5 * math.Pow(10, float64(e)), nil
}
