package session

import "context"

type storeContextKey struct{}

// WithStore attaches the client's store to ctx.
func WithStore(ctx context.Context, store *Store) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, storeContextKey{}, store)
}

// StoreFromContext returns the store attached by WithStore.
func StoreFromContext(ctx context.Context) (*Store, bool) {
	if ctx == nil {
		return nil, false
	}
	store, ok := ctx.Value(storeContextKey{}).(*Store)
	return store, ok && store != nil
}

// FromContext returns a copy of the session held by the attached store.
func FromContext(ctx context.Context) *Session {
	store, ok := StoreFromContext(ctx)
	if !ok {
		return nil
	}
	return store.Session()
}
