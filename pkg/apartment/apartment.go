/*
Package apartment indexes apartment complexes seen in the trade and rent records.

A complex is registered under its legal-dong code and the character n-grams of its
name keyword, so that "래미안", "미안" or a code prefix finds it. Queries are expanded
into n-grams the same way before they reach the index.
*/
package apartment

import (
	"fmt"
	"strings"
)

// DefaultNGram is the n-gram size used when none is configured.
const DefaultNGram = 2

// Address identifies one complex: its legal-dong code, its name and its road address codes.
type Address struct {
	LawAddrCode    string `msgpack:"lawaddrcode" json:"lawaddrcode"`
	Name           string `msgpack:"name" json:"name"`
	AddrCodeCity   int    `msgpack:"addrcode_city" json:"addrcode_city"`
	AddrCodeSerial int    `msgpack:"addrcode_serial" json:"addrcode_serial"`
	AddrCodeBld    int    `msgpack:"addrcode_bld" json:"addrcode_bld"`
	AddrCodeBldSub int    `msgpack:"addrcode_bld_sub" json:"addrcode_bld_sub"`
}

// Trade is a sale record. Only the fields the index and the store need are kept.
type Trade struct {
	LawAddrCodeCity int     `msgpack:"lawaddrcode_city" json:"lawaddrcode_city"`
	LawAddrCodeDong int     `msgpack:"lawaddrcode_dong" json:"lawaddrcode_dong"`
	LawAddrDong     string  `msgpack:"lawaddr_dong" json:"lawaddr_dong"`
	Name            string  `msgpack:"name" json:"name"`
	AddrCodeCity    int     `msgpack:"addrcode_city" json:"addrcode_city"`
	AddrCodeSerial  int     `msgpack:"addrcode_serial" json:"addrcode_serial"`
	AddrCodeBld     int     `msgpack:"addrcode_bld" json:"addrcode_bld"`
	AddrCodeBldSub  int     `msgpack:"addrcode_bld_sub" json:"addrcode_bld_sub"`
	Price           int     `msgpack:"price" json:"price"`
	DateSerial      int     `msgpack:"date_serial" json:"date_serial"`
	Size            float64 `msgpack:"size" json:"size"`
	Floor           int     `msgpack:"floor" json:"floor"`
}

// LawAddrCode joins the city and dong halves into the 10 digit legal-dong code.
func (t Trade) LawAddrCode() string {
	return FormatCode(t.LawAddrCodeCity) + FormatCode(t.LawAddrCodeDong)
}

// Rent is a lease record. Rents carry no legal-dong code, only the city code
// and the dong name, so they are placed through the region index.
type Rent struct {
	LocationCode int     `msgpack:"location_code" json:"location_code"`
	LawAddrDong  string  `msgpack:"lawaddr_dong" json:"lawaddr_dong"`
	Name         string  `msgpack:"name" json:"name"`
	PriceDeposit int     `msgpack:"price_deposit" json:"price_deposit"`
	PriceMonthly int     `msgpack:"price_monthly" json:"price_monthly"`
	DateSerial   int     `msgpack:"date_serial" json:"date_serial"`
	Size         float64 `msgpack:"size" json:"size"`
	Floor        int     `msgpack:"floor" json:"floor"`
}

// FormatCode renders half of a legal-dong code, zero padded to 5 digits.
func FormatCode(code int) string {
	return fmt.Sprintf("%05d", code)
}

// Keyword is the searchable part of a complex name: spaces removed and
// anything from the first "(" on dropped, so "래미안 (101동~105동)" becomes "래미안".
func Keyword(name string) string {
	kwd := strings.ReplaceAll(name, " ", "")
	kwd, _, _ = strings.Cut(kwd, "(")
	return kwd
}

// NGrams returns the character n-grams of s starting at positions 0 through len(s)-n-1.
// The final window is left out, which keeps index and query expansion symmetric;
// strings too short for a single window come back whole.
func NGrams(s string, n int) []string {
	runes := []rune(s)
	if n <= 0 || len(runes)-n <= 0 {
		return []string{s}
	}

	grams := make([]string, 0, len(runes)-n)
	for i := 0; i < len(runes)-n; i++ {
		grams = append(grams, string(runes[i:i+n]))
	}
	return grams
}

// Tags returns the index tags of a complex: its code followed by its keyword n-grams.
func Tags(a Address, n int) []string {
	return append([]string{a.LawAddrCode}, NGrams(Keyword(a.Name), n)...)
}
