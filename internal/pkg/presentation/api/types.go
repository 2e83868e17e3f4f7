package api

import (
	"time"

	"github.com/diwise/home-hub/pkg/types"
)

type meta struct {
	TotalRecords uint64  `json:"totalRecords"`
	Offset       *uint64 `json:"offset,omitempty"`
	Limit        *uint64 `json:"limit,omitempty"`
	Count        uint64  `json:"count"`
}

type links struct {
	Self  *string `json:"self,omitempty"`
	First *string `json:"first,omitempty"`
	Prev  *string `json:"prev,omitempty"`
	Next  *string `json:"next,omitempty"`
	Last  *string `json:"last,omitempty"`
}

type ApiResponse struct {
	Meta  *meta  `json:"meta,omitempty"`
	Data  any    `json:"data"`
	Links *links `json:"links,omitempty"`
}

func NewApiResponse(data any) ApiResponse {
	return ApiResponse{Data: data}
}

func NewCollectionResponse[T any](self string, collection types.Collection[T]) ApiResponse {
	offset := collection.Offset
	limit := collection.Limit

	return ApiResponse{
		Meta: &meta{
			TotalRecords: collection.TotalCount,
			Offset:       &offset,
			Limit:        &limit,
			Count:        collection.Count,
		},
		Data:  collection.Data,
		Links: &links{Self: &self},
	}
}

// entityDetails is an entity enriched with its current state, when the state
// store has one for it.
type entityDetails struct {
	types.Entity
	State          map[string]any `json:"state,omitempty"`
	StateUpdatedAt *time.Time     `json:"stateUpdatedAt,omitempty"`
}
