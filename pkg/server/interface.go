/*
Package server implements msgpack IPC for region and apartment search.

Clients write a stream of msgpack maps to stdin and read one msgpack map per
request from stdout. Requests are handled concurrently, so responses may arrive
out of order; match them by id. Logs go to stderr.

# IPC

The first frame the server writes is a status frame:

	{"status": "ready"}

A search request names its kind, the query and an optional limit:

	{"id": "req_001", "k": "region", "q": "서울 강남", "l": 10}

The server responds with the matches, their count and the time taken in microseconds:

	{"id": "req_001", "r": [{"lawaddrcode": "1168000000", "address": "서울특별시 강남구"}], "c": 1, "t": 42}

Kinds:

	region   region codes whose address matches q
	decode   region codes starting with the digit prefix q
	apart    apartment complexes whose name matches q
	resolve  complexes named a inside the regions matching q
	rate     deposit interest rate region of the first region matching q

Malformed or rejected requests get an error frame instead:

	{"id": "req_002", "e": "query too long", "c": 400}
*/
package server

// Request kinds.
const (
	KindRegion  = "region"
	KindDecode  = "decode"
	KindApart   = "apart"
	KindResolve = "resolve"
	KindRate    = "rate"
)

// SearchRequest is one request frame.
type SearchRequest struct {
	ID    string `msgpack:"id"`
	Kind  string `msgpack:"k"`
	Query string `msgpack:"q"`
	Apt   string `msgpack:"a,omitempty"`
	Limit int    `msgpack:"l,omitempty"`
}

// SearchResponse carries the results of a request. The element type of
// Results depends on the kind.
type SearchResponse struct {
	ID        string `msgpack:"id"`
	Results   any    `msgpack:"r"`
	Count     int    `msgpack:"c"`
	TimeTaken int64  `msgpack:"t"`
}

// RateResult is the result element of a rate request.
type RateResult struct {
	Address string `msgpack:"address"`
	Region  string `msgpack:"region"`
}

// ErrorResponse holds basic error information for a failed request.
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}

// StatusResponse is written once the server is ready for requests.
type StatusResponse struct {
	Status string `msgpack:"status"`
}
