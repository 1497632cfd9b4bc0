package main

import (
	"log"
	"os"

	"club-platform/internal"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is required")
	}
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	secureCookie := os.Getenv("COOKIE_SECURE") == "1"

	db := internal.MustDB(dbURL)
	defer db.Close()

	store := internal.NewPGStore(db)
	sched := internal.NewSchedule(store, store)
	members := internal.NewMembers(store)
	trainingAtt := internal.NewAttendance(store.TrainingAttendance(), store)
	competitionAtt := internal.NewAttendance(store.CompetitionParticipation(), nil)
	trainingGroups := internal.NewGroupRegistry(store.TrainingGroups(), trainingAtt)
	competitionGroups := internal.NewGroupRegistry(store.CompetitionGroups(), competitionAtt)
	acl := internal.NewAuthorizer()

	r := gin.Default()

	api := r.Group("/api")
	{
		api.POST("/auth/login", internal.Login(store, secret, secureCookie))
		api.POST("/auth/logout", internal.Logout())

		auth := api.Group("", internal.Auth(secret))

		auth.GET("/me", internal.Me(store))
		auth.POST("/auth/password", internal.RequireAllowed(acl, internal.ResSettings, internal.PrivManage),
			internal.ChangePassword(store))

		// trainings
		tv := auth.Group("", internal.RequireAllowed(acl, internal.ResTraining, internal.PrivView))
		{
			tv.GET("/trainings", internal.ListTrainings(sched))
			tv.GET("/trainings/:id", internal.GetTraining(sched))
			tv.GET("/my/trainings", internal.MyTrainings(sched))
			tv.POST("/trainings/:id/sign", internal.SignSelfTraining(trainingAtt))
			tv.POST("/trainings/:id/unsign", internal.UnsignSelfTraining(trainingAtt))
		}
		tm := auth.Group("", internal.RequireAllowed(acl, internal.ResTraining, internal.PrivManage))
		{
			tm.POST("/trainings", internal.CreateTraining(sched, store))
			tm.DELETE("/trainings/:id", internal.DeleteTraining(sched, store))
			tm.GET("/trainings/:id/attendants", internal.TrainingAttendants(store))
			tm.GET("/trainings/:id/non-attendants", internal.TrainingNonAttendants(store))
			tm.POST("/trainings/:id/attendants", internal.SignMemberTraining(trainingAtt))
			tm.DELETE("/trainings/:id/attendants/:member_id", internal.UnsignMemberTraining(trainingAtt))

			tm.GET("/training-groups", internal.ListGroups(trainingGroups))
			tm.POST("/training-groups", internal.CreateGroup(trainingGroups, store))
			tm.GET("/training-groups/:id", internal.GetGroup(trainingGroups))
			tm.PUT("/training-groups/:id", internal.UpdateGroup(trainingGroups))
			tm.DELETE("/training-groups/:id", internal.DeleteGroup(trainingGroups, store))
			tm.GET("/training-groups/:id/non-members", internal.GroupNonMembers(trainingGroups))
			tm.POST("/training-groups/:id/members", internal.AddGroupMember(trainingGroups))
			tm.DELETE("/training-groups/:id/members/:person_id", internal.RemoveGroupMember(trainingGroups))
			tm.POST("/training-groups/:id/sign", internal.GroupSignEvent(trainingGroups))
			tm.POST("/training-groups/:id/unsign", internal.GroupUnsignEvent(trainingGroups))
		}

		// competitions
		cv := auth.Group("", internal.RequireAllowed(acl, internal.ResCompetition, internal.PrivView))
		{
			cv.GET("/competitions", internal.ListCompetitions(sched))
			cv.GET("/competitions/:id", internal.GetCompetition(sched))
			cv.GET("/my/competitions", internal.MyCompetitions(sched, store))
			cv.POST("/competitions/:id/sign", internal.SignSelfCompetition(competitionAtt, store))
			cv.POST("/competitions/:id/unsign", internal.UnsignSelfCompetition(competitionAtt, store))
		}
		cm := auth.Group("", internal.RequireAllowed(acl, internal.ResCompetition, internal.PrivManage))
		{
			cm.POST("/competitions", internal.CreateCompetition(sched, store))
			cm.PUT("/competitions/:id", internal.UpdateCompetition(sched))
			cm.DELETE("/competitions/:id", internal.DeleteCompetition(sched, store))
			cm.GET("/competitions/:id/participants", internal.CompetitionParticipants(store))
			cm.GET("/competitions/:id/non-participants", internal.CompetitionNonParticipants(store))
			cm.POST("/competitions/:id/participants", internal.SignCompetitorCompetition(competitionAtt))
			cm.DELETE("/competitions/:id/participants/:competitor_id", internal.UnsignCompetitorCompetition(competitionAtt))
			cm.GET("/competitors", internal.ListCompetitors(store))

			cm.GET("/competition-groups", internal.ListGroups(competitionGroups))
			cm.POST("/competition-groups", internal.CreateGroup(competitionGroups, store))
			cm.GET("/competition-groups/:id", internal.GetGroup(competitionGroups))
			cm.PUT("/competition-groups/:id", internal.UpdateGroup(competitionGroups))
			cm.DELETE("/competition-groups/:id", internal.DeleteGroup(competitionGroups, store))
			cm.GET("/competition-groups/:id/non-members", internal.GroupNonMembers(competitionGroups))
			cm.POST("/competition-groups/:id/members", internal.AddGroupMember(competitionGroups))
			cm.DELETE("/competition-groups/:id/members/:person_id", internal.RemoveGroupMember(competitionGroups))
			cm.POST("/competition-groups/:id/sign", internal.GroupSignEvent(competitionGroups))
			cm.POST("/competition-groups/:id/unsign", internal.GroupUnsignEvent(competitionGroups))
		}

		// user management
		um := auth.Group("", internal.RequireAllowed(acl, internal.ResUserManagement, internal.PrivManage))
		{
			um.GET("/members", internal.ListMembers(members))
			um.GET("/members/by-role", internal.ListMembersByRole(members))
			um.POST("/members", internal.CreateMember(members, store))
			um.GET("/members/:id", internal.GetMember(members, store))
			um.PUT("/members/:id", internal.UpdateMember(members, store))
			um.DELETE("/members/:id", internal.DeleteMember(members, store))
			um.PUT("/members/:id/competitor", internal.UpdateCompetitorRecord(store))
			um.PUT("/members/:id/trainer", internal.UpdateTrainerRecord(store))
			um.PUT("/members/:id/coach", internal.UpdateCoachRecord(store))

			um.GET("/admin/logs", internal.AdminLogs(store))
		}
	}

	log.Printf("Listening on :%s", port)
	_ = r.Run(":" + port)
}
