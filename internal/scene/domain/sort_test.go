package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	lf "github.com/davicafu/medialist/internal/listfilter/domain"
	sharedQuery "github.com/davicafu/medialist/internal/shared/platform/query"
)

func TestSortFromFindFilter(t *testing.T) {
	tests := []struct {
		name    string
		find    lf.FindFilter
		want    SceneSort
		wantErr bool
	}{
		{name: "por defecto", find: lf.FindFilter{}, want: SceneSort{Sort: sharedQuery.Sort{Field: DefaultSceneSort}}},
		{name: "rating desc", find: lf.FindFilter{Sort: "rating", Direction: lf.SortDesc}, want: SceneSort{Sort: sharedQuery.Sort{Field: "rating", Desc: true}}},
		{name: "aleatorio con semilla", find: lf.FindFilter{Sort: "random_42"}, want: SceneSort{Random: true, Seed: 42}},
		{name: "aleatorio sin semilla", find: lf.FindFilter{Sort: "random"}, want: SceneSort{Random: true}},
		{name: "semilla inválida", find: lf.FindFilter{Sort: "random_x"}, wantErr: true},
		{name: "campo fuera de lista", find: lf.FindFilter{Sort: "id; DROP TABLE scenes"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SortFromFindFilter(tt.find)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSort)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
