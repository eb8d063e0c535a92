package apartment

import (
	"context"
	"strconv"

	"github.com/bastiangx/jamofind/pkg/finder"
	"github.com/bastiangx/jamofind/pkg/region"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
)

// Corpus streams the raw trade and rent records.
type Corpus interface {
	EachTrade(ctx context.Context, fn func(Trade) error) error
	EachRent(ctx context.Context, fn func(Rent) error) error
}

// RegionResolver places a rent, which only knows its city code and dong name.
type RegionResolver interface {
	First(terms []string) (region.Code, bool)
}

type complexKey struct {
	code, keyword, name string
}

// collector keeps one Address per complex in first-seen order.
type collector struct {
	pos     map[complexKey]int
	entries []Address
}

func newCollector() *collector {
	return &collector{pos: make(map[complexKey]int)}
}

func (c *collector) key(a Address) complexKey {
	return complexKey{a.LawAddrCode, Keyword(a.Name), a.Name}
}

// put stores a, replacing the address codes of an already seen complex.
func (c *collector) put(a Address) {
	k := c.key(a)
	if i, ok := c.pos[k]; ok {
		c.entries[i] = a
		return
	}
	c.pos[k] = len(c.entries)
	c.entries = append(c.entries, a)
}

// add stores a unless the complex is already known.
func (c *collector) add(a Address) bool {
	k := c.key(a)
	if _, ok := c.pos[k]; ok {
		return false
	}
	c.pos[k] = len(c.entries)
	c.entries = append(c.entries, a)
	return true
}

// Source walks the corpus and feeds one registration per distinct complex.
//
// Trades come first and the last trade of a complex decides its road address
// codes. Rents only contribute complexes no trade has named; a rent whose
// (city code, dong) does not resolve to a region is skipped.
func Source(corpus Corpus, regions RegionResolver, n int) finder.Source[Address] {
	return func(ctx context.Context, register func([]string, Address)) error {
		c := newCollector()

		trades := 0
		err := corpus.EachTrade(ctx, func(t Trade) error {
			trades++
			c.put(Address{
				LawAddrCode:    t.LawAddrCode(),
				Name:           t.Name,
				AddrCodeCity:   t.AddrCodeCity,
				AddrCodeSerial: t.AddrCodeSerial,
				AddrCodeBld:    t.AddrCodeBld,
				AddrCodeBldSub: t.AddrCodeBldSub,
			})
			return ctx.Err()
		})
		if err != nil {
			return err
		}
		fromTrades := len(c.entries)

		rents, unresolved := 0, 0
		err = corpus.EachRent(ctx, func(r Rent) error {
			rents++
			code, ok := regions.First([]string{strconv.Itoa(r.LocationCode), r.LawAddrDong})
			if !ok {
				unresolved++
				return ctx.Err()
			}
			c.add(Address{
				LawAddrCode:  code.LawAddrCode,
				Name:         r.Name,
				AddrCodeCity: r.LocationCode,
			})
			return ctx.Err()
		})
		if err != nil {
			return err
		}

		log.Infof("apartments: %s complexes from %s trades, %s more from %s rents (%s rents unplaced)",
			humanize.Comma(int64(fromTrades)), humanize.Comma(int64(trades)),
			humanize.Comma(int64(len(c.entries)-fromTrades)), humanize.Comma(int64(rents)),
			humanize.Comma(int64(unresolved)))

		for _, a := range c.entries {
			register(Tags(a, n), a)
		}
		return nil
	}
}
