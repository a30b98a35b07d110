package client

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Store が使う API（テストでは差し替える）
type API interface {
	GetCart(ctx context.Context) (Cart, error)
	AddToCart(ctx context.Context, in AddItem) (Cart, error)
	UpdateQuantity(ctx context.Context, itemID, qty int64) (Cart, error)
	RemoveLine(ctx context.Context, itemID int64) (Cart, error)
	Wishlist(ctx context.Context) ([]WishlistEntry, error)
	AddToWishlist(ctx context.Context, productID int64) error
	RemoveFromWishlist(ctx context.Context, productID int64) error
}

// 画面側が読む状態
type State struct {
	Cart     Cart
	Wishlist map[int64]struct{}
	// 変更のたびに増える
	Revision uint64
	// 確定・取り消しが後続の変更と重なった。Refresh で取り直す
	Stale bool
}

func (s State) InWishlist(productID int64) bool {
	_, ok := s.Wishlist[productID]
	return ok
}

func (s State) clone() State {
	out := s
	out.Cart.Items = append([]CartLine(nil), s.Cart.Items...)
	out.Wishlist = make(map[int64]struct{}, len(s.Wishlist))
	for k := range s.Wishlist {
		out.Wishlist[k] = struct{}{}
	}
	return out
}

// カートとウィッシュリストの状態を持つ。グローバルには置かず注入して使う
//
// 楽観更新は2段階:
//  1. ローカルに仮反映して Revision を上げる
//  2. サーバーの結果で確定 or 取り消し
//
// 2 の時点で Revision が変わっていたら上書きせず Stale にする
type Store struct {
	api API
	log logrus.FieldLogger

	mu        sync.Mutex
	state     State
	listeners map[int]func(State)
	nextID    int
}

func NewStore(api API, log logrus.FieldLogger) *Store {
	return &Store{
		api:       api,
		log:       log,
		state:     State{Wishlist: map[int64]struct{}{}, Cart: Cart{TotalAmount: decimal.Zero}},
		listeners: map[int]func(State){},
	}
}

func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// 変更通知。返り値で解除
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// サーバーの状態で丸ごと置き換える
func (s *Store) Refresh(ctx context.Context) error {
	cart, err := s.api.GetCart(ctx)
	if err != nil {
		return err
	}
	entries, err := s.api.Wishlist(ctx)
	if err != nil {
		return err
	}

	wl := make(map[int64]struct{}, len(entries))
	for _, e := range entries {
		wl[e.ProductID] = struct{}{}
	}
	s.commit(func(st *State) {
		st.Cart = cart
		st.Wishlist = wl
		st.Stale = false
	})
	return nil
}

// 行IDはサーバーが決めるので仮反映しない
func (s *Store) AddToCart(ctx context.Context, in AddItem) error {
	cart, err := s.api.AddToCart(ctx, in)
	if err != nil {
		return err
	}
	s.commit(func(st *State) { st.Cart = cart })
	return nil
}

func (s *Store) SetQuantity(ctx context.Context, itemID, qty int64) error {
	if qty <= 0 {
		return s.RemoveLine(ctx, itemID)
	}
	prev, rev := s.apply(func(st *State) {
		for i := range st.Cart.Items {
			if st.Cart.Items[i].ID == itemID {
				line := &st.Cart.Items[i]
				line.Quantity = qty
				line.Subtotal = line.UnitPrice.Mul(decimal.NewFromInt(qty))
			}
		}
		recalc(&st.Cart)
	})

	cart, err := s.api.UpdateQuantity(ctx, itemID, qty)
	return s.settle(prev, rev, err, func(st *State) { st.Cart = cart })
}

func (s *Store) RemoveLine(ctx context.Context, itemID int64) error {
	prev, rev := s.apply(func(st *State) {
		items := st.Cart.Items[:0]
		for _, l := range st.Cart.Items {
			if l.ID != itemID {
				items = append(items, l)
			}
		}
		st.Cart.Items = items
		recalc(&st.Cart)
	})

	cart, err := s.api.RemoveLine(ctx, itemID)
	return s.settle(prev, rev, err, func(st *State) { st.Cart = cart })
}

// 反転後に入っているかを返す
func (s *Store) ToggleWishlist(ctx context.Context, productID int64) (bool, error) {
	var added bool
	prev, rev := s.apply(func(st *State) {
		if _, ok := st.Wishlist[productID]; ok {
			delete(st.Wishlist, productID)
			return
		}
		st.Wishlist[productID] = struct{}{}
		added = true
	})

	var err error
	if added {
		err = s.api.AddToWishlist(ctx, productID)
	} else {
		err = s.api.RemoveFromWishlist(ctx, productID)
	}
	if err := s.settle(prev, rev, err, func(*State) {}); err != nil {
		return !added, err
	}
	return added, nil
}

// 仮反映。戻し用の状態と反映後の Revision を返す
func (s *Store) apply(mutate func(*State)) (State, uint64) {
	s.mu.Lock()
	prev := s.state.clone()
	next := s.state.clone()
	mutate(&next)
	next.Revision++
	s.state = next
	snap, ls := s.state.clone(), s.listenersLocked()
	s.mu.Unlock()

	notify(ls, snap)
	return prev, next.Revision
}

func (s *Store) settle(prev State, rev uint64, callErr error, confirm func(*State)) error {
	s.mu.Lock()
	switch {
	case s.state.Revision != rev:
		// 後から別の変更が入った
		s.state.Stale = true
	case callErr != nil:
		restored := prev.clone()
		restored.Revision = s.state.Revision + 1
		s.state = restored
	default:
		confirm(&s.state)
		s.state.Revision++
	}
	snap, ls := s.state.clone(), s.listenersLocked()
	s.mu.Unlock()

	if callErr != nil {
		s.log.WithError(callErr).WithField("revision", rev).Warn("optimistic update rolled back")
	}
	notify(ls, snap)
	return callErr
}

func (s *Store) commit(mutate func(*State)) {
	s.mu.Lock()
	mutate(&s.state)
	s.state.Revision++
	snap, ls := s.state.clone(), s.listenersLocked()
	s.mu.Unlock()

	notify(ls, snap)
}

func (s *Store) listenersLocked() []func(State) {
	out := make([]func(State), 0, len(s.listeners))
	for _, fn := range s.listeners {
		out = append(out, fn)
	}
	return out
}

func notify(ls []func(State), st State) {
	for _, fn := range ls {
		fn(st)
	}
}

// 購入できる行だけ数える
func recalc(c *Cart) {
	c.TotalItems = 0
	c.TotalAmount = decimal.Zero
	for _, l := range c.Items {
		if !l.Available {
			continue
		}
		c.TotalItems += l.Quantity
		c.TotalAmount = c.TotalAmount.Add(l.Subtotal)
	}
}
