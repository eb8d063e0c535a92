/*
Package region indexes Korean legal-dong codes (법정동코드) by their address.

Each code is registered under every word of its address, a short "시" alias for
metropolitan and special cities, and the code itself, so that "서울 강남", "서울시 역삼"
and "11680" all resolve.
*/
package region

import "strings"

// Code is one legal-dong code with its full address.
type Code struct {
	LawAddrCode string `msgpack:"lawaddrcode" json:"lawaddrcode"`
	Address     string `msgpack:"address" json:"address"`
}

// cityKinds are the first-field suffixes that also get a plain "시" alias.
var cityKinds = []string{"광역시", "특별자치시", "특별시"}

// Tags returns the search tags of c.
func Tags(c Code) []string {
	tags := strings.Fields(c.Address)

	if len(tags) > 0 {
		first := tags[0]
		for _, kind := range cityKinds {
			if strings.Contains(first, kind) {
				tags = append(tags, strings.Replace(first, kind, "시", 1))
			}
		}
	}

	if code := strings.TrimSpace(c.LawAddrCode); code != "" {
		tags = append(tags, code)
	}
	return tags
}
