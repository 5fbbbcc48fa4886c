package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/teamboard/teamboard/database"
	"github.com/teamboard/teamboard/handlers"
	"github.com/teamboard/teamboard/services"
)

func main() {
	// Load environment variables from .env file
	if err := LoadEnv(".env"); err != nil && !os.IsNotExist(err) {
		fmt.Printf("Error loading .env file: %v\n", err)
		return
	}

	// Initialize database
	db, err := database.InitDB(os.Getenv("DATABASE_PATH"))
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	// Initialize repositories
	userRepo := database.NewUserRepository(db)
	groupRepo := database.NewGroupRepository(db)
	listRepo := database.NewListRepository(db)
	taskRepo := database.NewTaskRepository(db)
	invitationRepo := database.NewInvitationRepository(db)
	auditRepo := database.NewAuditRepository(db)

	// Initialize the audit sink
	auditor := services.NewAuditor(auditRepo)
	go auditor.Run()
	defer auditor.Close()

	// Initialize services
	authService := services.NewAuthService()
	userService := services.NewUserService(userRepo, auditor)
	groupService := services.NewGroupService(groupRepo, userRepo, auditor)
	invitationService := services.NewInvitationService(invitationRepo, groupRepo, userRepo, auditor)
	listService := services.NewListService(listRepo, groupRepo, auditor)
	taskService := services.NewTaskService(taskRepo, listRepo, groupRepo, userRepo, auditor)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, userService)
	userHandler := handlers.NewUserHandler(userService)
	groupHandler := handlers.NewGroupHandler(groupService)
	invitationHandler := handlers.NewInvitationHandler(invitationService)
	listHandler := handlers.NewListHandler(listService)
	taskHandler := handlers.NewTaskHandler(taskService)
	authMiddleware := handlers.NewAuthMiddleware(authService)

	// Setup router
	r := mux.NewRouter()

	// Auth routes
	r.HandleFunc("/api/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/api/auth/verify", authHandler.VerifyToken).Methods("GET")

	// Protected routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authMiddleware.Auth)

	// User routes
	api.HandleFunc("/users/me/tasks", userHandler.MyTasks).Methods("GET")
	api.HandleFunc("/users/{id:[0-9]+}/block", userHandler.Block).Methods("POST")
	api.HandleFunc("/users/{id:[0-9]+}/unblock", userHandler.Unblock).Methods("POST")

	// Group routes
	api.HandleFunc("/groups", groupHandler.Create).Methods("POST")
	api.HandleFunc("/groups", groupHandler.List).Methods("GET")
	api.HandleFunc("/groups/{id:[0-9]+}", groupHandler.Get).Methods("GET")
	api.HandleFunc("/groups/{id:[0-9]+}", groupHandler.Update).Methods("PUT")
	api.HandleFunc("/groups/{id:[0-9]+}", groupHandler.Delete).Methods("DELETE")
	api.HandleFunc("/groups/{id:[0-9]+}/admins", groupHandler.AddAdmin).Methods("POST")
	api.HandleFunc("/groups/{id:[0-9]+}/admins/{userId:[0-9]+}", groupHandler.RemoveAdmin).Methods("DELETE")
	api.HandleFunc("/groups/{id:[0-9]+}/members/{userId:[0-9]+}", groupHandler.RemoveMember).Methods("DELETE")
	api.HandleFunc("/groups/{id:[0-9]+}/available-users", groupHandler.AvailableUsers).Methods("GET")

	// Invitation routes
	api.HandleFunc("/groups/{id:[0-9]+}/invitations", invitationHandler.Send).Methods("POST")
	api.HandleFunc("/invitations", invitationHandler.List).Methods("GET")
	api.HandleFunc("/invitations/{id:[0-9]+}/accept", invitationHandler.Accept).Methods("POST")
	api.HandleFunc("/invitations/{id:[0-9]+}/reject", invitationHandler.Reject).Methods("POST")

	// List routes
	api.HandleFunc("/groups/{id:[0-9]+}/lists", listHandler.Create).Methods("POST")
	api.HandleFunc("/groups/{id:[0-9]+}/lists", listHandler.ByGroup).Methods("GET")
	api.HandleFunc("/lists/{id:[0-9]+}", listHandler.Get).Methods("GET")
	api.HandleFunc("/lists/{id:[0-9]+}", listHandler.Update).Methods("PUT")
	api.HandleFunc("/lists/{id:[0-9]+}", listHandler.Delete).Methods("DELETE")

	// Task routes
	api.HandleFunc("/lists/{id:[0-9]+}/tasks", taskHandler.Create).Methods("POST")
	api.HandleFunc("/lists/{id:[0-9]+}/tasks", taskHandler.ByList).Methods("GET")
	api.HandleFunc("/tasks/{id:[0-9]+}", taskHandler.Get).Methods("GET")
	api.HandleFunc("/tasks/{id:[0-9]+}", taskHandler.Update).Methods("PUT")
	api.HandleFunc("/tasks/{id:[0-9]+}", taskHandler.Delete).Methods("DELETE")
	api.HandleFunc("/tasks/{id:[0-9]+}/assign", taskHandler.Assign).Methods("POST")
	api.HandleFunc("/tasks/{id:[0-9]+}/unassign", taskHandler.Unassign).Methods("POST")

	// Checklist and tag sub-resources
	api.HandleFunc("/tasks/{id:[0-9]+}/checklists", taskHandler.AddChecklist).Methods("POST")
	api.HandleFunc("/tasks/{id:[0-9]+}/checklists/{index:[0-9]+}", taskHandler.RenameChecklist).Methods("PUT")
	api.HandleFunc("/tasks/{id:[0-9]+}/checklists/{index:[0-9]+}", taskHandler.DeleteChecklist).Methods("DELETE")
	api.HandleFunc("/tasks/{id:[0-9]+}/checklists/{index:[0-9]+}/elements", taskHandler.AddChecklistElement).Methods("POST")
	api.HandleFunc("/tasks/{id:[0-9]+}/checklists/{index:[0-9]+}/elements/{pos:[0-9]+}", taskHandler.UpdateChecklistElement).Methods("PUT")
	api.HandleFunc("/tasks/{id:[0-9]+}/checklists/{index:[0-9]+}/elements/{pos:[0-9]+}", taskHandler.DeleteChecklistElement).Methods("DELETE")
	api.HandleFunc("/tasks/{id:[0-9]+}/tags", taskHandler.AddTag).Methods("POST")
	api.HandleFunc("/tasks/{id:[0-9]+}/tags/{index:[0-9]+}", taskHandler.UpdateTag).Methods("PUT")
	api.HandleFunc("/tasks/{id:[0-9]+}/tags/{index:[0-9]+}", taskHandler.DeleteTag).Methods("DELETE")

	// Setup CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // In production, change to your domain
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}

	// Start server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      c.Handler(r),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("Server starting on port %s", port)
	log.Fatal(server.ListenAndServe())
}
