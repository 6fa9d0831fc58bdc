package ws

import "sync"

// Registry — явный реестр живых комнат, инжектится в транспорт.
// Чисто эфемерный: после рестарта процесса пуст, клиенты переподключаются;
// источник правды для истории — Session Store, не реестр.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room

	chat     ChatLog
	sessions SessionCloser
}

func NewRegistry(chat ChatLog, sessions SessionCloser) *Registry {
	return &Registry{
		rooms:    make(map[string]*Room),
		chat:     chat,
		sessions: sessions,
	}
}

// Attach — привязывает транспорт к комнате, при необходимости создавая её.
// Retry покрывает гонку с комнатой, завершившейся между выдачей и post.
func (g *Registry) Attach(roomID string, c Conn) *Room {
	for {
		g.mu.Lock()
		r, ok := g.rooms[roomID]
		if !ok {
			r = newRoom(roomID, g)
			g.rooms[roomID] = r
			go r.run()
		}
		g.mu.Unlock()

		if r.post(command{kind: cmdAttach, conn: c}) {
			return r
		}
	}
}

// remove — вызывается самой комнатой, когда ушёл последний транспорт.
// done закрывается под локом: Attach после этого гарантированно создаст новую.
func (g *Registry) remove(r *Room) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.rooms[r.id] == r {
		delete(g.rooms, r.id)
	}
	close(r.done)
}

// Len — количество живых комнат (для health/административной статистики).
func (g *Registry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	return len(g.rooms)
}
