package services

import (
	"strconv"
	"strings"

	"capstone-tracker/models"
	"capstone-tracker/repositories"

	"github.com/pkg/errors"
)

// GroupPolicy answers who may act for a group. Students without a group
// code form a group of one.
type GroupPolicy struct {
	store repositories.Store
}

func NewGroupPolicy(store repositories.Store) *GroupPolicy {
	return &GroupPolicy{store: store}
}

// With binds the policy to tx so its reads join the transaction.
func (g *GroupPolicy) With(tx repositories.Store) *GroupPolicy {
	return &GroupPolicy{store: tx}
}

func (g *GroupPolicy) ResolveGroup(user *models.User) string {
	return strings.TrimSpace(user.GroupCode)
}

// GroupKey identifies the group for uniqueness checks.
func (g *GroupPolicy) GroupKey(user *models.User) string {
	if code := g.ResolveGroup(user); code != "" {
		return code
	}
	return "solo-" + strconv.FormatUint(uint64(user.ID), 10)
}

func (g *GroupPolicy) GroupMemberIDs(user *models.User) ([]uint, error) {
	code := g.ResolveGroup(user)
	if code == "" {
		return []uint{user.ID}, nil
	}
	members, err := g.store.Users().ListByGroupCode(code)
	if err != nil {
		return nil, errors.Wrap(err, "list group members")
	}
	ids := make([]uint, 0, len(members)+1)
	self := false
	for _, m := range members {
		ids = append(ids, m.ID)
		self = self || m.ID == user.ID
	}
	if !self {
		ids = append(ids, user.ID)
	}
	return ids, nil
}

// AuthorizeGroupAction reports whether actor owns the resource or shares the owner's group.
func (g *GroupPolicy) AuthorizeGroupAction(actor *models.User, ownerID uint) (bool, error) {
	if actor.ID == ownerID {
		return true, nil
	}
	code := g.ResolveGroup(actor)
	if code == "" {
		return false, nil
	}
	owner, err := g.store.Users().GetByID(ownerID)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, errors.Wrap(err, "load resource owner")
	}
	return g.ResolveGroup(owner) == code, nil
}

func (g *GroupPolicy) HasGroupSubmission(user *models.User) (bool, error) {
	ids, err := g.GroupMemberIDs(user)
	if err != nil {
		return false, err
	}
	exists, err := g.store.Capstones().ExistsByOwners(ids)
	return exists, errors.Wrap(err, "check group submission")
}
