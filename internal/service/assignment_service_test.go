package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/admissions-crm/internal/domain"
	"github.com/spec-kit/admissions-crm/internal/events"
)

func TestAssignmentService_AssignLead(t *testing.T) {
	o := newOffice(t)
	lead := o.addLead(t, "Ananya", o.leader.ID, domain.StatusFreshLead)
	svc := o.assignmentService()
	ctx := context.Background()

	updated, err := svc.AssignLead(ctx, o.leader, lead.ID, o.counselor.ID)
	require.NoError(t, err)
	require.Equal(t, o.counselor.ID, updated.AssignedTo)
	require.Contains(t, o.eventTypes(), events.EventLeadAssigned)

	entries, err := o.activity.ListByLead(ctx, lead.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, domain.ChangeTypeAssignee, entries[0].ChangeType)
	require.Equal(t, o.leader.ID, entries[0].OldValue["assigned_to"])

	// Reassigning to the current assignee is a no-op.
	_, err = svc.AssignLead(ctx, o.leader, lead.ID, o.counselor.ID)
	require.NoError(t, err)
	entries, err = o.activity.ListByLead(ctx, lead.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestAssignmentService_AssignLeadRules(t *testing.T) {
	o := newOffice(t)
	lead := o.addLead(t, "Ananya", o.counselor.ID, domain.StatusFreshLead)
	outside := o.addLead(t, "Dev's lead", o.delhi.ID, domain.StatusFreshLead)
	svc := o.assignmentService()
	ctx := context.Background()

	_, err := svc.AssignLead(ctx, o.counselor, lead.ID, o.leader.ID)
	requireCode(t, err, "FORBIDDEN")

	_, err = svc.AssignLead(ctx, o.leader, outside.ID, o.counselor.ID)
	requireCode(t, err, "FORBIDDEN")

	_, err = svc.AssignLead(ctx, o.leader, lead.ID, "missing")
	requireCode(t, err, "NOT_FOUND")

	o.delhi.IsActive = false
	require.NoError(t, o.users.Update(ctx, o.delhi))
	_, err = svc.AssignLead(ctx, o.manager, lead.ID, o.delhi.ID)
	requireCode(t, err, "CONFLICT")

	self, err := svc.SelfAssignLead(ctx, o.leader, lead.ID)
	require.NoError(t, err)
	require.Equal(t, o.leader.ID, self.AssignedTo)
}

func TestAssignmentService_DistributeUnassigned(t *testing.T) {
	o := newOffice(t)
	second := o.addUser(t, "Chandra", domain.RoleCounselor, o.leader, domain.BranchHyderabad)
	a := o.addLead(t, "A", o.leader.ID, domain.StatusFreshLead)
	b := o.addLead(t, "B", o.leader.ID, domain.StatusFreshLead)
	svc := o.assignmentService()
	ctx := context.Background()

	assigned, err := svc.DistributeUnassigned(ctx, o.leader, []string{a.ID, b.ID})
	require.NoError(t, err)
	require.Len(t, assigned, 2)
	for _, lead := range assigned {
		require.Contains(t, []string{o.counselor.ID, second.ID}, lead.AssignedTo)
	}

	// The same input lands on the same counselors.
	again, err := svc.DistributeUnassigned(ctx, o.leader, []string{a.ID, b.ID})
	require.NoError(t, err)
	require.Equal(t, assigned[0].AssignedTo, again[0].AssignedTo)
	require.Equal(t, assigned[1].AssignedTo, again[1].AssignedTo)

	_, err = svc.DistributeUnassigned(ctx, o.counselor, []string{a.ID})
	requireCode(t, err, "CONFLICT")
}
