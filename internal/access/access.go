// Package access decides whether a requester may join a document's room.
// Decisions are computed fresh on every join attempt; caching one across
// requests would leak access after a membership or ownership change.
package access

import (
	"context"
	"errors"

	"scribe/api/internal/store"
)

type Reason string

const (
	ReasonOwner          Reason = "OWNER"
	ReasonOrgMember      Reason = "ORG_MEMBER"
	ReasonDeniedNotFound Reason = "DENIED_NOT_FOUND"
	ReasonDeniedNoRel    Reason = "DENIED_NO_RELATION"
)

type Decision struct {
	Allowed  bool
	Reason   Reason
	Document store.Document
}

// DocumentReader is the document-storage collaborator. The scoped token
// minted by the exchange step authorizes the lookup.
type DocumentReader interface {
	GetDocumentAccess(ctx context.Context, token, documentID, requesterID string) (store.DocumentAccess, error)
}

type Evaluator struct {
	docs DocumentReader
}

func NewEvaluator(docs DocumentReader) *Evaluator {
	return &Evaluator{docs: docs}
}

// Evaluate checks, in order: does the document exist, is the requester its
// owner, is the requester a member of its organization. Errors other than
// not-found propagate as upstream failures.
func (e *Evaluator) Evaluate(ctx context.Context, token, requesterID, documentID string) (Decision, error) {
	access, err := e.docs.GetDocumentAccess(ctx, token, documentID, requesterID)
	if errors.Is(err, store.ErrNotFound) {
		return Decision{Allowed: false, Reason: ReasonDeniedNotFound}, nil
	}
	if err != nil {
		return Decision{}, err
	}

	if access.IsOwner {
		return Decision{Allowed: true, Reason: ReasonOwner, Document: access.Document}, nil
	}
	if access.IsOrgMember {
		return Decision{Allowed: true, Reason: ReasonOrgMember, Document: access.Document}, nil
	}
	return Decision{Allowed: false, Reason: ReasonDeniedNoRel, Document: access.Document}, nil
}
