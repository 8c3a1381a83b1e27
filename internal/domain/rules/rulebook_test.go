package rules

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleBook_Add(t *testing.T) {
	b := NewRuleBook(uuid.New(), "Oak")

	added, err := b.Add(
		Draft{Title: "Quiet hours", Description: "No noise after 10pm", Category: CategoryNoise},
		Draft{Title: "Rent", Description: "Pay by the 5th"},
	)
	require.NoError(t, err)
	require.Len(t, added, 2)
	assert.Equal(t, CategoryGeneral, added[1].Category)
	assert.Len(t, b.Rules, 2)
	assert.Equal(t, "Quiet hours", b.Rules[0].Title)
	assert.Len(t, b.GetDomainEvents(), 1)
}

func TestRuleBook_AddIsAllOrNothing(t *testing.T) {
	b := NewRuleBook(uuid.New(), "Oak")

	_, err := b.Add(
		Draft{Title: "Ok", Description: "fine"},
		Draft{Title: "Bad", Description: "x", Category: Category("parking")},
	)
	assert.ErrorContains(t, err, "Invalid rule category")
	assert.Empty(t, b.Rules)

	_, err = b.Add()
	assert.Error(t, err)
}

func TestRuleBook_EditAndRemove(t *testing.T) {
	b := NewRuleBook(uuid.New(), "Oak")
	added, err := b.Add(
		Draft{Title: "A", Description: "a"},
		Draft{Title: "B", Description: "b"},
		Draft{Title: "C", Description: "c"},
	)
	require.NoError(t, err)

	title := "B2"
	pets := CategoryPets
	r, err := b.Edit(added[1].ID, RulePatch{Title: &title, Category: &pets})
	require.NoError(t, err)
	assert.Equal(t, "B2", r.Title)
	assert.Equal(t, CategoryPets, b.Rules[1].Category)
	assert.Equal(t, added[1].ID, b.Rules[1].ID)

	empty := ""
	_, err = b.Edit(added[1].ID, RulePatch{Description: &empty})
	assert.Error(t, err)
	assert.Equal(t, "b", b.Rules[1].Description)

	require.NoError(t, b.Remove(added[0].ID))
	require.Len(t, b.Rules, 2)
	assert.Equal(t, "B2", b.Rules[0].Title)
	assert.Equal(t, "C", b.Rules[1].Title)

	assert.ErrorContains(t, b.Remove(added[0].ID), "not found")
	_, err = b.Edit(uuid.New(), RulePatch{})
	assert.ErrorContains(t, err, "not found")
}

func TestRuleList_ValueScan(t *testing.T) {
	l := RuleList{{ID: uuid.New(), Title: "A", Description: "a", Category: CategoryGeneral}}
	v, err := l.Value()
	require.NoError(t, err)

	var out RuleList
	require.NoError(t, out.Scan([]byte(v.(string))))
	assert.Equal(t, l[0].ID, out[0].ID)
}
