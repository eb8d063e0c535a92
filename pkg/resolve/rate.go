package resolve

import (
	"strings"

	"github.com/bastiangx/jamofind/pkg/fuzzy"
)

// NationwideRateRegion is the deposit interest rate region used when nothing closer matches.
const NationwideRateRegion = "전국"

type rateRegion struct {
	prefix string
	region string
}

var seoulRateRegions = []struct {
	region    string
	districts []string
}{
	{"도심권", []string{"종로", "중", "용산"}},
	{"동북권", []string{"성동", "광진", "동대문", "중랑", "성북", "강북", "도봉", "노원"}},
	{"서북권", []string{"은평", "서대문", "마포"}},
	{"서남권", []string{"양천", "강서", "구로", "금천", "영등포", "동작", "관악"}},
	{"동남권", []string{"서초", "강남", "송파", "강동"}},
}

var provinceRateRegions = []rateRegion{
	{"인천시", "인천"},
	{"광주시", "광주"},
	{"대구시", "대구"},
	{"세종시", "세종"},
	{"대전시", "대전"},
	{"울산시", "울산"},
	{"부산시", "부산"},
	{"제주도", "제주"},
	{"충청북도", "충북"},
	{"충청남도", "충남"},
	{"강원도", "강원"},
	{"전라북도", "전북"},
	{"전라남도", "전남"},
	{"경상북도", "경북"},
	{"경상남도", "경남"},
	{"경기도", "경기"},
}

// rateRegions is ordered: on equal scores the later entry wins, and the empty
// nationwide prefix, which always scores 0, comes last.
var rateRegions = buildRateRegions()

func buildRateRegions() []rateRegion {
	var out []rateRegion
	for _, s := range seoulRateRegions {
		for _, d := range s.districts {
			out = append(out, rateRegion{prefix: "서울시" + d + "구", region: s.region})
		}
	}
	out = append(out, provinceRateRegions...)
	return append(out, rateRegion{prefix: "", region: NationwideRateRegion})
}

// 특별자치 goes before 특별 so that 세종특별자치시 reduces to 세종시, not 세종자치시.
var addressNoise = strings.NewReplacer("특별자치", "", "광역", "", "특별", "", " ", "")

// RateRegion maps a region address to the region its deposit interest rates are
// published for: one of the five Seoul zones, a province or city, or 전국.
//
// Both sides are cropped to the shorter length and scored as
// length - 2 * jamo distance; the best score wins.
func RateRegion(address string) string {
	query := []rune(addressNoise.Replace(address))

	best, bestScore := NationwideRateRegion, 0
	first := true
	for _, cand := range rateRegions {
		prefix := []rune(cand.prefix)
		crop := min(len(query), len(prefix))
		score := crop - 2*fuzzy.Distance(string(query[:crop]), string(prefix[:crop]))
		if first || bestScore <= score {
			best, bestScore = cand.region, score
			first = false
		}
	}
	return best
}
