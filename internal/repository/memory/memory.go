// Package memory is a process-local Store used by tests and single-node
// development. One mutex serializes every operation, which gives each method
// the same atomicity the postgres store gets from transactions.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"gymcrew-backend/internal/domain"
	"gymcrew-backend/internal/repository"

	"github.com/google/uuid"
)

type memberKey struct{ groupID, userID string }

type checkInKey struct{ groupID, userID, date string }

type badgeKey struct {
	groupID     string
	badgeType   domain.BadgeType
	periodStart string
}

// Store exposes the repositories backed by one shared state.
type Store struct {
	repository.Store
	st *state
}

type state struct {
	mu sync.Mutex

	users     map[string]domain.User
	groups    map[string]domain.Group
	members   map[memberKey]domain.Membership
	locations map[string]domain.Location
	checkIns  map[string]domain.CheckIn
	byDay     map[checkInKey]string
	approvals []domain.ManualApproval
	invites   map[string]domain.Invite
	badges    map[badgeKey]domain.Badge

	// seq orders rows created within the same clock tick.
	seq     int64
	created map[string]int64

	now func() time.Time
}

func NewStore() *Store {
	st := &state{
		users:     make(map[string]domain.User),
		groups:    make(map[string]domain.Group),
		members:   make(map[memberKey]domain.Membership),
		locations: make(map[string]domain.Location),
		checkIns:  make(map[string]domain.CheckIn),
		byDay:     make(map[checkInKey]string),
		invites:   make(map[string]domain.Invite),
		badges:    make(map[badgeKey]domain.Badge),
		created:   make(map[string]int64),
		now:       func() time.Time { return time.Now().UTC() },
	}
	return &Store{
		st: st,
		Store: repository.Store{
			UserRepository:       (*userRepo)(st),
			GroupRepository:      (*groupRepo)(st),
			MembershipRepository: (*membershipRepo)(st),
			LocationRepository:   (*locationRepo)(st),
			CheckInRepository:    (*checkInRepo)(st),
			InviteRepository:     (*inviteRepo)(st),
			BadgeRepository:      (*badgeRepo)(st),
		},
	}
}

func (s *state) stamp(id string) time.Time {
	s.seq++
	s.created[id] = s.seq
	return s.now()
}

// PutUser upserts a profile. Users are owned by the identity provider, so
// there is no create path in the repository interface.
func (m *Store) PutUser(u domain.User) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	m.st.users[u.ID] = u
}

type userRepo state

func (r *userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	s := (*state)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// Approvals returns the audit trail in insertion order.
func (m *Store) Approvals() []domain.ManualApproval {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	return append([]domain.ManualApproval(nil), m.st.approvals...)
}

func (s *state) groupMembers(groupID string) []domain.Membership {
	var out []domain.Membership
	for k, m := range s.members {
		if k.groupID == groupID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return s.created[memberID(out[i])] < s.created[memberID(out[j])]
	})
	return out
}

func memberID(m domain.Membership) string { return "m:" + m.GroupID + ":" + m.UserID }

func (s *state) addMember(m domain.Membership) {
	m.JoinedAt = s.stamp(memberID(m))
	s.members[memberKey{m.GroupID, m.UserID}] = m
}

func (s *state) deleteGroup(groupID string) {
	delete(s.groups, groupID)
	for k := range s.members {
		if k.groupID == groupID {
			delete(s.members, k)
		}
	}
	for id, l := range s.locations {
		if l.GroupID == groupID {
			delete(s.locations, id)
		}
	}
	for id, c := range s.checkIns {
		if c.GroupID == groupID {
			delete(s.checkIns, id)
			delete(s.byDay, checkInKey{c.GroupID, c.UserID, c.CheckinDate})
		}
	}
	for tok, inv := range s.invites {
		if inv.GroupID == groupID {
			delete(s.invites, tok)
		}
	}
	for k := range s.badges {
		if k.groupID == groupID {
			delete(s.badges, k)
		}
	}
}

type groupRepo state

func (r *groupRepo) Create(ctx context.Context, g *domain.Group, creator *domain.Membership) error {
	s := (*state)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	g.CreatedAt = s.stamp(g.ID)
	s.groups[g.ID] = *g
	creator.GroupID = g.ID
	s.addMember(*creator)
	creator.JoinedAt = s.members[memberKey{g.ID, creator.UserID}].JoinedAt
	return nil
}

func (r *groupRepo) GetByID(ctx context.Context, id string) (*domain.Group, error) {
	s := (*state)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[id]
	if !ok {
		return nil, domain.ErrGroupNotFound
	}
	return &g, nil
}

func (r *groupRepo) Update(ctx context.Context, g *domain.Group) error {
	s := (*state)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.groups[g.ID]
	if !ok {
		return domain.ErrGroupNotFound
	}
	cur.Name = g.Name
	cur.Description = g.Description
	cur.Timezone = g.Timezone
	s.groups[g.ID] = cur
	return nil
}

func (r *groupRepo) UpdateRoutine(ctx context.Context, groupID string, path, contentType *string) error {
	s := (*state)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.groups[groupID]
	if !ok {
		return domain.ErrGroupNotFound
	}
	cur.RoutinePath = path
	cur.RoutineContentType = contentType
	s.groups[groupID] = cur
	return nil
}

func (r *groupRepo) List(ctx context.Context) ([]domain.Group, error) {
	s := (*state)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Group, 0, len(s.groups))
	for _, g := range s.groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return s.created[out[i].ID] < s.created[out[j].ID] })
	return out, nil
}

func (r *groupRepo) ListByUser(ctx context.Context, userID string) ([]domain.Group, []domain.Membership, error) {
	s := (*state)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	var ms []domain.Membership
	for k, m := range s.members {
		if k.userID == userID {
			ms = append(ms, m)
		}
	}
	// newest membership first
	sort.Slice(ms, func(i, j int) bool { return s.created[memberID(ms[i])] > s.created[memberID(ms[j])] })
	groups := make([]domain.Group, 0, len(ms))
	for _, m := range ms {
		groups = append(groups, s.groups[m.GroupID])
	}
	return groups, ms, nil
}

type membershipRepo state

func (r *membershipRepo) Get(ctx context.Context, groupID, userID string) (*domain.Membership, error) {
	s := (*state)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[memberKey{groupID, userID}]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r *membershipRepo) ListByGroup(ctx context.Context, groupID string) ([]domain.Member, error) {
	s := (*state)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	ms := s.groupMembers(groupID)
	sort.SliceStable(ms, func(i, j int) bool { return ms[i].Role < ms[j].Role })
	out := make([]domain.Member, 0, len(ms))
	for _, m := range ms {
		u := s.users[m.UserID]
		name := u.Name
		if name == "" {
			name = m.UserID
		}
		out = append(out, domain.Member{Membership: m, Name: name, AvatarURL: u.AvatarURL})
	}
	return out, nil
}

func (r *membershipRepo) Leave(ctx context.Context, groupID, userID string) (domain.LeaveAction, error) {
	s := (*state)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[groupID]; !ok {
		return 0, domain.ErrGroupNotFound
	}
	action, err := domain.DecideLeave(s.groupMembers(groupID), userID)
	if err != nil {
		return 0, err
	}
	if action == domain.LeaveDeleteGroup {
		s.deleteGroup(groupID)
	} else {
		delete(s.members, memberKey{groupID, userID})
	}
	return action, nil
}

func (r *membershipRepo) SetRole(ctx context.Context, groupID, targetID string, role domain.MemberRole) error {
	s := (*state)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[groupID]; !ok {
		return domain.ErrGroupNotFound
	}
	if err := domain.CheckRoleChange(s.groupMembers(groupID), targetID, role); err != nil {
		return err
	}
	k := memberKey{groupID, targetID}
	m := s.members[k]
	m.Role = role
	s.members[k] = m
	return nil
}

type locationRepo state

func (r *locationRepo) Create(ctx context.Context, l *domain.Location) error {
	s := (*state)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[l.GroupID]; !ok {
		return domain.ErrGroupNotFound
	}
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	l.CreatedAt = s.stamp(l.ID)
	s.locations[l.ID] = *l
	return nil
}

func (r *locationRepo) Delete(ctx context.Context, groupID, id string) error {
	s := (*state)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locations[id]
	if !ok || l.GroupID != groupID {
		return domain.NewError(domain.KindInvalidArgument, "location not found")
	}
	delete(s.locations, id)
	return nil
}

func (r *locationRepo) ListByGroup(ctx context.Context, groupID string) ([]domain.Location, error) {
	s := (*state)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Location
	for _, l := range s.locations {
		if l.GroupID == groupID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return s.created[out[i].ID] < s.created[out[j].ID] })
	return out, nil
}

type checkInRepo state

func (r *checkInRepo) Create(ctx context.Context, c *domain.CheckIn) error {
	s := (*state)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	k := checkInKey{c.GroupID, c.UserID, c.CheckinDate}
	if _, ok := s.byDay[k]; ok {
		return domain.ErrDuplicateCheckIn
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = s.stamp(c.ID)
	s.checkIns[c.ID] = *c
	s.byDay[k] = c.ID
	return nil
}

func (r *checkInRepo) GetByID(ctx context.Context, groupID, id string) (*domain.CheckIn, error) {
	s := (*state)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.checkIns[id]
	if !ok || c.GroupID != groupID {
		return nil, domain.ErrCheckInNotFound
	}
	return &c, nil
}

func (r *checkInRepo) GetByDate(ctx context.Context, groupID, userID, date string) (*domain.CheckIn, error) {
	s := (*state)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byDay[checkInKey{groupID, userID, date}]
	if !ok {
		return nil, nil
	}
	c := s.checkIns[id]
	return &c, nil
}

// pendingManual is the shared precondition of Approve and Reject; the caller holds mu.
func (s *state) pendingManual(groupID, id string) (domain.CheckIn, error) {
	c, ok := s.checkIns[id]
	if !ok || c.GroupID != groupID || !c.IsPendingManual() {
		return c, domain.ErrNotPendingManual
	}
	return c, nil
}

func (r *checkInRepo) Approve(ctx context.Context, groupID, id, approverID string, at time.Time) error {
	s := (*state)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.pendingManual(groupID, id)
	if err != nil {
		return err
	}
	c.Status = domain.CheckInStatusApproved
	s.checkIns[id] = c
	s.approvals = append(s.approvals, domain.ManualApproval{
		ID:             uuid.NewString(),
		CheckInID:      id,
		ApproverUserID: approverID,
		CreatedAt:      at,
	})
	return nil
}

func (r *checkInRepo) Reject(ctx context.Context, groupID, id, reason string) error {
	s := (*state)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.pendingManual(groupID, id)
	if err != nil {
		return err
	}
	c.Status = domain.CheckInStatusRejected
	c.RejectReason = &reason
	s.checkIns[id] = c
	return nil
}

func (r *checkInRepo) ListPendingManual(ctx context.Context, groupID string) ([]domain.CheckIn, error) {
	s := (*state)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.CheckIn
	for _, c := range s.checkIns {
		if c.GroupID == groupID && c.IsPendingManual() {
			c.UserName = s.users[c.UserID].Name
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return s.created[out[i].ID] < s.created[out[j].ID] })
	return out, nil
}

func (r *checkInRepo) CountApproved(ctx context.Context, groupID, start, end string) (map[string]int, error) {
	s := (*state)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[string]int)
	for _, c := range s.checkIns {
		// ISO dates compare correctly as strings.
		if c.GroupID == groupID && c.Status == domain.CheckInStatusApproved && c.CheckinDate >= start && c.CheckinDate <= end {
			counts[c.UserID]++
		}
	}
	return counts, nil
}

func (r *checkInRepo) ListApprovedDates(ctx context.Context, groupID, userID string, limit int) ([]string, error) {
	s := (*state)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	var dates []string
	for _, c := range s.checkIns {
		if c.GroupID == groupID && c.UserID == userID && c.Status == domain.CheckInStatusApproved {
			dates = append(dates, c.CheckinDate)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	if limit > 0 && len(dates) > limit {
		dates = dates[:limit]
	}
	return dates, nil
}

type inviteRepo state

func (r *inviteRepo) Create(ctx context.Context, inv *domain.Invite) error {
	s := (*state)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[inv.GroupID]; !ok {
		return domain.ErrGroupNotFound
	}
	inv.CreatedAt = s.stamp("i:" + inv.Token)
	s.invites[inv.Token] = *inv
	return nil
}

func (r *inviteRepo) ListByGroup(ctx context.Context, groupID string) ([]domain.Invite, error) {
	s := (*state)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Invite
	for _, inv := range s.invites {
		if inv.GroupID == groupID {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return s.created["i:"+out[i].Token] > s.created["i:"+out[j].Token] })
	return out, nil
}

func (r *inviteRepo) Deactivate(ctx context.Context, groupID, token string) error {
	s := (*state)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invites[token]
	if !ok || inv.GroupID != groupID {
		return domain.ErrInvalidOrExpiredToken
	}
	inv.Active = false
	s.invites[token] = inv
	return nil
}

func (r *inviteRepo) Redeem(ctx context.Context, token, userID string, now time.Time) (*domain.Invite, error) {
	s := (*state)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invites[token]
	if !ok {
		return nil, domain.ErrInvalidOrExpiredToken
	}
	if err := inv.CheckRedeemable(now); err != nil {
		return nil, err
	}
	if _, ok := s.members[memberKey{inv.GroupID, userID}]; ok {
		return nil, domain.ErrAlreadyMember
	}
	s.addMember(domain.Membership{GroupID: inv.GroupID, UserID: userID, Role: domain.MemberRoleMember})
	inv.Uses++
	s.invites[token] = inv
	return &inv, nil
}

type badgeRepo state

func (r *badgeRepo) Get(ctx context.Context, groupID string, badgeType domain.BadgeType, periodStart string) (*domain.Badge, error) {
	s := (*state)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.badges[badgeKey{groupID, badgeType, periodStart}]
	if !ok {
		return nil, nil
	}
	b.UserName = s.users[b.UserID].Name
	return &b, nil
}

func (r *badgeRepo) CreateIfAbsent(ctx context.Context, b *domain.Badge) (bool, error) {
	s := (*state)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	k := badgeKey{b.GroupID, b.BadgeType, b.PeriodStart}
	if _, ok := s.badges[k]; ok {
		return false, nil
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	b.CreatedAt = s.stamp(b.ID)
	s.badges[k] = *b
	return true, nil
}
