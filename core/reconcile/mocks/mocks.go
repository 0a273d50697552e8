package mocks

import (
	"context"

	"rank-sync/core/reconcile"

	"github.com/stretchr/testify/mock"
)

// Platform is a mock implementation of reconcile.Platform
type Platform struct {
	mock.Mock
}

func (m *Platform) Guilds(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if ids, ok := args.Get(0).([]string); ok {
		return ids, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Platform) Members(ctx context.Context, guildID string) ([]reconcile.Member, error) {
	args := m.Called(ctx, guildID)
	if members, ok := args.Get(0).([]reconcile.Member); ok {
		return members, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Platform) Member(ctx context.Context, guildID, memberID string) (*reconcile.Member, error) {
	args := m.Called(ctx, guildID, memberID)
	if member, ok := args.Get(0).(*reconcile.Member); ok {
		return member, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Platform) Roles(ctx context.Context, guildID string) ([]reconcile.Role, error) {
	args := m.Called(ctx, guildID)
	if roles, ok := args.Get(0).([]reconcile.Role); ok {
		return roles, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Platform) SetNickname(ctx context.Context, guildID, memberID, nickname string) error {
	args := m.Called(ctx, guildID, memberID, nickname)
	return args.Error(0)
}

func (m *Platform) AddRole(ctx context.Context, guildID, memberID, roleID string) error {
	args := m.Called(ctx, guildID, memberID, roleID)
	return args.Error(0)
}

func (m *Platform) RemoveRole(ctx context.Context, guildID, memberID, roleID string) error {
	args := m.Called(ctx, guildID, memberID, roleID)
	return args.Error(0)
}

// IdentityStore is a mock implementation of reconcile.IdentityStore
type IdentityStore struct {
	mock.Mock
}

func (m *IdentityStore) GetIdentity(ctx context.Context, memberID string) (*reconcile.VerifiedIdentity, error) {
	args := m.Called(ctx, memberID)
	if id, ok := args.Get(0).(*reconcile.VerifiedIdentity); ok {
		return id, args.Error(1)
	}
	return nil, args.Error(1)
}

// RankProvider is a mock implementation of reconcile.RankProvider
type RankProvider struct {
	mock.Mock
}

func (m *RankProvider) IsMember(ctx context.Context, externalID, groupID int64) (bool, error) {
	args := m.Called(ctx, externalID, groupID)
	return args.Bool(0), args.Error(1)
}

func (m *RankProvider) GetRank(ctx context.Context, externalID, groupID int64) (*reconcile.Rank, error) {
	args := m.Called(ctx, externalID, groupID)
	if rank, ok := args.Get(0).(*reconcile.Rank); ok {
		return rank, args.Error(1)
	}
	return nil, args.Error(1)
}

// MappingSource is a mock implementation of reconcile.MappingSource
type MappingSource struct {
	mock.Mock
}

func (m *MappingSource) LoadMapping(ctx context.Context, guildID string) (reconcile.MappingConfig, error) {
	args := m.Called(ctx, guildID)
	if cfg, ok := args.Get(0).(reconcile.MappingConfig); ok {
		return cfg, args.Error(1)
	}
	return reconcile.MappingConfig{}, args.Error(1)
}

// Observer is a mock implementation of reconcile.OutcomeObserver
type Observer struct {
	mock.Mock
}

func (m *Observer) MemberReconciled(ctx context.Context, guildID string, trigger reconcile.Trigger, outcome reconcile.Outcome) error {
	args := m.Called(ctx, guildID, trigger, outcome)
	return args.Error(0)
}
