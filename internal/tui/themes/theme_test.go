package themes

import (
	"testing"

	"github.com/Veraticus/pocketbook/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestForPreference(t *testing.T) {
	assert.Equal(t, Dark.Primary, ForPreference(model.ThemeDark).Primary)
	assert.Equal(t, Light.Primary, ForPreference(model.ThemeLight).Primary)

	auto := ForPreference(model.ThemeAuto).Primary
	assert.Contains(t, []any{Dark.Primary, Light.Primary}, auto)
}

func TestThemesDiffer(t *testing.T) {
	assert.NotEqual(t, Dark.Foreground, Light.Foreground)
	assert.NotEqual(t, Dark.Income.GetForeground(), Dark.Expense.GetForeground())
}
