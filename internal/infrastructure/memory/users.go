package memory

import (
	"context"
	"strings"

	"github.com/obralink/obralink-api/internal/domain/entity"
)

// UserRepo usuarios en memoria, indexados por email sin distinguir mayúsculas.
type UserRepo struct {
	store *Store
}

func (r *UserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	var out *entity.User
	err := r.store.view(nil, func(st *state) error {
		for _, u := range st.users {
			if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
				u := u
				out = &u
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *UserRepo) Upsert(_ context.Context, u *entity.User) error {
	return r.store.view(nil, func(st *state) error {
		for id, existing := range st.users {
			if strings.EqualFold(existing.Email, u.Email) {
				u.ID = id
				st.users[id] = *u
				return nil
			}
		}
		st.nextUser++
		u.ID = st.nextUser
		st.users[u.ID] = *u
		return nil
	})
}
