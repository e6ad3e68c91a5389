package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"archiviz/internal/common/apperr"
	"archiviz/internal/room/geometry"
	"archiviz/internal/room/models"
	"archiviz/internal/room/state"
	"archiviz/internal/suggest"

	"github.com/google/uuid"
)

// DesignRepository - хранилище сохранённых дизайнов.
type DesignRepository interface {
	Save(ctx context.Context, d models.Design) error
	Get(ctx context.Context, id string) (*models.Design, error)
	List(ctx context.Context) ([]models.DesignSummary, error)
	Delete(ctx context.Context, id string) error
}

type Options struct {
	// ReclampOnResize прижимает элементы к стенам при уменьшении комнаты.
	ReclampOnResize bool
	// SuggestTimeout ограничивает один запрос к AI.
	SuggestTimeout time.Duration
	// NotificationTTL - через сколько скрывать уведомление.
	NotificationTTL time.Duration
	Now             func() time.Time
}

// ============================================================
// Store
// ============================================================

// Store держит открытые сессии редактора в памяти.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*session

	suggester suggest.Suggester
	designs   DesignRepository
	logger    *slog.Logger
	opts      Options
}

func NewStore(suggester suggest.Suggester, designs DesignRepository, logger *slog.Logger, opts Options) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.SuggestTimeout <= 0 {
		opts.SuggestTimeout = 30 * time.Second
	}
	if opts.NotificationTTL <= 0 {
		opts.NotificationTTL = state.NotificationTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{
		sessions:  make(map[string]*session),
		suggester: suggester,
		designs:   designs,
		logger:    logger,
		opts:      opts,
	}
}

type session struct {
	mu      sync.Mutex
	state   models.ViewState
	subs    map[int]chan models.ViewState
	nextSub int
	closed  bool
}

// Create открывает новую сессию с комнатой по умолчанию.
func (s *Store) Create() (string, models.ViewState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	sess := &session{
		state: state.New(),
		subs:  make(map[int]chan models.ViewState),
	}
	s.sessions[id] = sess
	s.logger.Info("room session created", "room_id", id)
	return id, sess.state
}

func (s *Store) lookup(id string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, apperr.NotFoundf("room %s not found", id)
	}
	return sess, nil
}

func (s *Store) Get(id string) (models.ViewState, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return models.ViewState{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.state, nil
}

// Delete закрывает сессию и все её подписки.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return apperr.NotFoundf("room %s not found", id)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.closed = true
	for key, ch := range sess.subs {
		close(ch)
		delete(sess.subs, key)
	}
	s.logger.Info("room session closed", "room_id", id)
	return nil
}

// Len возвращает число открытых сессий.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// ============================================================
// State transitions
// ============================================================

// update применяет редьюсер под замком сессии и рассылает новое состояние.
func (s *Store) update(id string, reduce func(models.ViewState) models.ViewState) (models.ViewState, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return models.ViewState{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.applyLocked(id, sess, reduce), nil
}

func (s *Store) applyLocked(id string, sess *session, reduce func(models.ViewState) models.ViewState) models.ViewState {
	prev := sess.state
	next := reduce(prev)
	if next.Version == prev.Version {
		return prev
	}
	sess.state = next
	sess.publishLocked(next)

	n := next.Notification
	if n != nil && !n.ExpiresAt.IsZero() && (prev.Notification == nil || prev.Notification.Seq != n.Seq) {
		s.scheduleClear(id, sess, n.Seq)
	}
	return next
}

// expiresAt - момент, когда новое уведомление будет скрыто.
func (s *Store) expiresAt() time.Time {
	return s.opts.Now().Add(s.opts.NotificationTTL)
}

func (s *Store) scheduleClear(id string, sess *session, seq uint64) {
	time.AfterFunc(s.opts.NotificationTTL, func() {
		sess.mu.Lock()
		defer sess.mu.Unlock()
		if sess.closed {
			return
		}
		s.applyLocked(id, sess, func(v models.ViewState) models.ViewState {
			return state.ClearNotification(v, seq)
		})
	})
}

func (s *Store) SetDimensions(id string, upd state.DimensionsUpdate) (models.ViewState, error) {
	return s.update(id, func(v models.ViewState) models.ViewState {
		return state.SetDimensions(v, upd, s.opts.ReclampOnResize)
	})
}

func (s *Store) SelectSide(id string, side models.RoomSide) (models.ViewState, error) {
	if !side.Valid() {
		return models.ViewState{}, apperr.Validationf("unknown side %q", side)
	}
	return s.update(id, func(v models.ViewState) models.ViewState {
		return state.SelectSide(v, side)
	})
}

func (s *Store) SelectItem(id, itemID string) (models.ViewState, error) {
	return s.update(id, func(v models.ViewState) models.ViewState {
		return state.SelectItem(v, itemID)
	})
}

func (s *Store) UpdateSide(id string, side models.RoomSide, upd state.SideUpdate) (models.ViewState, error) {
	if !side.Valid() {
		return models.ViewState{}, apperr.Validationf("unknown side %q", side)
	}
	return s.update(id, func(v models.ViewState) models.ViewState {
		return state.UpdateSide(v, side, upd)
	})
}

// AddItem ставит пресет на выбранную стену. Новый id выдаётся здесь.
func (s *Store) AddItem(id string, itemType models.ItemType, presetID string) (models.ViewState, error) {
	if !itemType.Valid() {
		return models.ViewState{}, apperr.Validationf("unknown item type %q", itemType)
	}
	itemID := uuid.NewString()
	return s.update(id, func(v models.ViewState) models.ViewState {
		return state.AddItem(v, itemType, presetID, itemID)
	})
}

func (s *Store) RemoveItem(id, itemID string) (models.ViewState, error) {
	return s.update(id, func(v models.ViewState) models.ViewState {
		return state.RemoveItem(v, itemID)
	})
}

func (s *Store) BeginDrag(id, itemID string) (models.ViewState, error) {
	return s.update(id, func(v models.ViewState) models.ViewState {
		return state.BeginDrag(v, itemID)
	})
}

// Drag двигает захваченный элемент. Точка в мировых координатах
// переводится в систему стены элемента.
func (s *Store) Drag(id, itemID string, point geometry.Vec3, world bool) (models.ViewState, error) {
	return s.update(id, func(v models.ViewState) models.ViewState {
		local := point
		if world {
			item, _, ok := v.FindItem(itemID)
			if !ok {
				return v
			}
			local = geometry.WorldToLocal(item.Wall, v.Dimensions, point)
		}
		return state.DragTo(v, itemID, local)
	})
}

func (s *Store) EndDrag(id, itemID string) (models.ViewState, error) {
	return s.update(id, func(v models.ViewState) models.ViewState {
		return state.EndDrag(v, itemID)
	})
}

// ============================================================
// AI suggestion
// ============================================================

// RequestSuggestion запрашивает цветовую схему. Пока запрос выполняется,
// повторный вызов отклоняется. Поставщик вызывается без замка сессии.
func (s *Store) RequestSuggestion(ctx context.Context, id string) (models.ViewState, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return models.ViewState{}, err
	}

	sess.mu.Lock()
	if sess.state.Generating {
		sess.mu.Unlock()
		return models.ViewState{}, apperr.Conflict("suggestion already in progress")
	}
	s.applyLocked(id, sess, func(v models.ViewState) models.ViewState {
		return state.BeginSuggestion(v)
	})
	sess.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.opts.SuggestTimeout)
	defer cancel()
	sug, sugErr := s.suggester.Suggest(ctx)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sugErr != nil {
		s.logger.Warn("suggestion failed", "room_id", id, "error", sugErr)
		s.applyLocked(id, sess, func(v models.ViewState) models.ViewState {
			return state.FailSuggestion(v, s.expiresAt())
		})
		return models.ViewState{}, apperr.WrapExternal("suggestion failed", sugErr)
	}

	next := s.applyLocked(id, sess, func(v models.ViewState) models.ViewState {
		return state.ApplySuggestion(v, sug, s.expiresAt())
	})
	return next, nil
}

// ============================================================
// Subscriptions
// ============================================================

// Subscribe возвращает канал снимков состояния. Медленный подписчик
// получает только последний снимок. Первым значением приходит текущее состояние.
func (s *Store) Subscribe(id string) (<-chan models.ViewState, func(), error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	ch := make(chan models.ViewState, 1)
	ch <- sess.state
	key := sess.nextSub
	sess.nextSub++
	sess.subs[key] = ch

	cancel := func() {
		sess.mu.Lock()
		defer sess.mu.Unlock()
		if c, ok := sess.subs[key]; ok {
			close(c)
			delete(sess.subs, key)
		}
	}
	return ch, cancel, nil
}

func (sess *session) publishLocked(v models.ViewState) {
	for _, ch := range sess.subs {
		select {
		case ch <- v:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- v
		}
	}
}

// ============================================================
// Designs
// ============================================================

// SaveDesign сохраняет текущую комнату сессии под именем name.
func (s *Store) SaveDesign(ctx context.Context, id, name string) (models.Design, error) {
	if name == "" {
		return models.Design{}, apperr.Validation("design name is required")
	}
	v, err := s.Get(id)
	if err != nil {
		return models.Design{}, err
	}

	d := state.Snapshot(v, uuid.NewString(), name, s.opts.Now().UTC())
	if err := s.designs.Save(ctx, d); err != nil {
		return models.Design{}, apperr.WrapInternal("save design", err)
	}
	s.logger.Info("design saved", "room_id", id, "design_id", d.ID, "name", name)
	return d, nil
}

// ImportDesign сохраняет дизайн, разобранный из файла.
func (s *Store) ImportDesign(ctx context.Context, d models.Design) (models.Design, error) {
	d.ID = uuid.NewString()
	d.CreatedAt = s.opts.Now().UTC()
	if err := s.designs.Save(ctx, d); err != nil {
		return models.Design{}, apperr.WrapInternal("import design", err)
	}
	s.logger.Info("design imported", "design_id", d.ID, "name", d.Name)
	return d, nil
}

// LoadDesign заменяет комнату сессии сохранённым дизайном.
func (s *Store) LoadDesign(ctx context.Context, id, designID string) (models.ViewState, error) {
	if _, err := s.lookup(id); err != nil {
		return models.ViewState{}, err
	}
	d, err := s.designs.Get(ctx, designID)
	if err != nil {
		return models.ViewState{}, err
	}
	return s.update(id, func(v models.ViewState) models.ViewState {
		return state.LoadDesign(v, *d)
	})
}

func (s *Store) ListDesigns(ctx context.Context) ([]models.DesignSummary, error) {
	return s.designs.List(ctx)
}

func (s *Store) GetDesign(ctx context.Context, designID string) (*models.Design, error) {
	return s.designs.Get(ctx, designID)
}

func (s *Store) DeleteDesign(ctx context.Context, designID string) error {
	return s.designs.Delete(ctx, designID)
}
