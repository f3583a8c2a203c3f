package main

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"memeboard/handlers/api/blobs"
	"memeboard/handlers/api/removebg"
	"memeboard/handlers/api/scenes"
	"memeboard/handlers/auth"
	authMiddleware "memeboard/middleware"
	"memeboard/removal"
	"memeboard/stores"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/engine.io/v2/utils"
	socketio "github.com/zishang520/socket.io/v2/socket"
)

func setupRouter(store stores.Store, remover *removal.Client) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Content-Length", "Origin", "Host", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})

	r.Post("/auth/session", auth.HandleNewSession)

	r.Route("/api/v2", func(r chi.Router) {
		r.Use(authMiddleware.AuthJWT)

		r.Route("/scenes", func(r chi.Router) {
			r.Get("/", scenes.HandleList(store))
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", scenes.HandleGet(store))
				r.Put("/", scenes.HandleSave(store))
				r.Delete("/", scenes.HandleDelete(store))
			})
		})

		r.Route("/blobs/{elementID}", func(r chi.Router) {
			r.Get("/", blobs.HandleGet(store))
			r.Put("/", blobs.HandlePut(store))
			r.Delete("/", blobs.HandleDelete(store))
			r.Post("/remove-background", removebg.HandleRemove(store, remover))
		})
	})

	return r
}

// setupSocketIO wires the live scene rooms: clients editing the same
// scene join one room, committed states are broadcast, and pointer
// previews go out as volatile messages that may be dropped.
func setupSocketIO() *socketio.Server {
	opts := socketio.DefaultServerOptions()
	opts.SetMaxHttpBufferSize(5000000)
	opts.SetPath("/socket.io")
	opts.SetAllowEIO3(true)
	opts.SetCors(&types.Cors{
		Origin:      "*",
		Credentials: true,
	})
	ioo := socketio.NewServer(nil, opts)

	ioo.On("connection", func(clients ...any) {
		socket := clients[0].(*socketio.Socket)
		me := socket.Id()
		myRoom := socketio.Room(me)
		ioo.To(myRoom).Emit("init-room")
		socket.On("join-scene", func(datas ...any) {
			room := socketio.Room(datas[0].(string))
			utils.Log().Printf("Socket %v has joined scene %v\n", me, room)
			socket.Join(room)
			ioo.In(room).FetchSockets()(func(usersInRoom []*socketio.RemoteSocket, _ error) {
				if len(usersInRoom) <= 1 {
					ioo.To(myRoom).Emit("first-in-scene")
				} else {
					socket.Broadcast().To(room).Emit("new-user", me)
				}

				roomUsers := []socketio.SocketId{}
				for _, user := range usersInRoom {
					roomUsers = append(roomUsers, user.Id())
				}
				ioo.In(room).Emit("scene-user-change", roomUsers)
			})
		})
		// Committed canvas states relayed to everyone else in the scene.
		socket.On("scene-broadcast", func(datas ...any) {
			sceneID := datas[0].(string)
			socket.Broadcast().To(socketio.Room(sceneID)).Emit("scene-update", datas[1:]...)
		})
		// Transient pointer/preview traffic; volatile so it may be
		// dropped under pressure without ever blocking a commit.
		socket.On("scene-volatile-broadcast", func(datas ...any) {
			sceneID := datas[0].(string)
			socket.Volatile().Broadcast().To(socketio.Room(sceneID)).Emit("scene-preview", datas[1:]...)
		})
		socket.On("disconnecting", func(datas ...any) {
			for _, currentRoom := range socket.Rooms().Keys() {
				ioo.In(currentRoom).FetchSockets()(func(usersInRoom []*socketio.RemoteSocket, _ error) {
					otherClients := []socketio.SocketId{}
					for _, userInRoom := range usersInRoom {
						if userInRoom.Id() != me {
							otherClients = append(otherClients, userInRoom.Id())
						}
					}
					if len(otherClients) > 0 {
						ioo.In(currentRoom).Emit("scene-user-change", otherClients)
					}
				})
			}
		})
		socket.On("disconnect", func(datas ...any) {
			socket.RemoveAllListeners("")
			socket.Disconnect(true)
		})
	})
	return ioo
}

func waitForShutdown(ioo *socketio.Server) {
	exit := make(chan struct{})
	signalC := make(chan os.Signal, 1)

	signal.Notify(signalC, os.Interrupt, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		for s := range signalC {
			switch s {
			case os.Interrupt, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT:
				close(exit)
				return
			}
		}
	}()

	<-exit
	logrus.Info("Shutting down...")
	ioo.Close(nil)
	os.Exit(0)
}

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found")
	}

	listenAddress := flag.String("listen", ":3002", "The address to listen on.")
	logLevel := flag.String("loglevel", "info", "The log level (debug, info, warn, error).")
	flag.Parse()

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	auth.InitAuth()
	remover := removal.NewFromEnv()
	store := stores.GetStore()

	r := setupRouter(store, remover)

	ioo := setupSocketIO()
	r.Mount("/socket.io/", ioo.ServeHandler(nil))

	logrus.WithField("addr", *listenAddress).Info("starting server")
	go func() {
		if err := http.ListenAndServe(*listenAddress, r); err != nil {
			logrus.WithField("event", "start server").Fatal(err)
		}
	}()

	logrus.Debug("Server is running in the background")
	waitForShutdown(ioo)
}
