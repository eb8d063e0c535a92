/*
Package resolve joins the region and apartment indexes: it turns a free-form
address plus a complex name into the list of complexes they identify.
*/
package resolve

import (
	"cmp"
	"context"
	"runtime"
	"slices"

	"github.com/bastiangx/jamofind/pkg/apartment"
	"github.com/bastiangx/jamofind/pkg/region"
	"golang.org/x/sync/errgroup"
)

// ApartmentID names one complex uniquely: region address, legal-dong code and name.
type ApartmentID struct {
	Address     string `msgpack:"address" json:"address"`
	LawAddrCode string `msgpack:"lawaddrcode" json:"lawaddrcode"`
	Name        string `msgpack:"name" json:"name"`
}

// RegionSearcher finds regions by address.
type RegionSearcher interface {
	Search(query string) []region.Code
}

// ApartmentSearcher finds complexes by code and name terms.
type ApartmentSearcher interface {
	SearchTerms(terms []string) []apartment.Address
}

// Resolver answers combined region and complex queries.
type Resolver struct {
	regions     RegionSearcher
	aparts      ApartmentSearcher
	concurrency int
}

// New creates a Resolver. concurrency bounds the per-region apartment searches
// in flight for one query; zero or less uses GOMAXPROCS.
func New(regions RegionSearcher, aparts ApartmentSearcher, concurrency int) *Resolver {
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	return &Resolver{regions: regions, aparts: aparts, concurrency: concurrency}
}

// Search finds every region matching addr, then the complexes named aptName inside
// each of them. An empty aptName lists every complex of the matched regions.
// Results are distinct and sorted by address, code and name.
func (r *Resolver) Search(ctx context.Context, addr, aptName string) ([]ApartmentID, error) {
	codes := r.regions.Search(addr)
	found := make([][]ApartmentID, len(codes))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, code := range codes {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for _, a := range r.aparts.SearchTerms([]string{code.LawAddrCode, aptName}) {
				// the code term is a prefix match, keep exact codes only
				if a.LawAddrCode == code.LawAddrCode {
					found[i] = append(found[i], ApartmentID{
						Address:     code.Address,
						LawAddrCode: code.LawAddrCode,
						Name:        a.Name,
					})
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := []ApartmentID{}
	for _, ids := range found {
		out = append(out, ids...)
	}
	slices.SortFunc(out, compareIDs)
	return slices.Compact(out), nil
}

func compareIDs(a, b ApartmentID) int {
	return cmp.Or(
		cmp.Compare(a.Address, b.Address),
		cmp.Compare(a.LawAddrCode, b.LawAddrCode),
		cmp.Compare(a.Name, b.Name),
	)
}
