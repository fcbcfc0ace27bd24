package mongo

import (
	"context"
	"time"

	"github.com/AnshRaj112/researchhive-backend/internal/models"
	"github.com/AnshRaj112/researchhive-backend/internal/storage"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// membershipUpdate turns a MembershipChange into $pull/$addToSet operators.
// A field must not appear in both AddTo and RemoveFrom.
func membershipUpdate(change models.MembershipChange) bson.M {
	update := bson.M{}
	if len(change.RemoveFrom) > 0 {
		pull := bson.M{}
		for _, f := range change.RemoveFrom {
			pull[f] = change.UserID
		}
		update["$pull"] = pull
	}
	if len(change.AddTo) > 0 {
		add := bson.M{}
		for _, f := range change.AddTo {
			add[f] = change.UserID
		}
		update["$addToSet"] = add
	}
	return update
}

var soonestFirst = bson.D{{Key: "start", Value: 1}, {Key: "_id", Value: 1}}

// Events

func (s *Store) CreateEvent(ctx context.Context, e *models.Event) error {
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if e.Participants == nil {
		e.Participants = []primitive.ObjectID{}
	}
	if e.Invited == nil {
		e.Invited = []primitive.ObjectID{}
	}
	_, err := s.col(colEvents).InsertOne(ctx, e)
	return mapErr(err)
}

func (s *Store) GetEvent(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	return findOne[models.Event](ctx, s.col(colEvents), bson.M{"_id": id})
}

func (s *Store) ListEvents(ctx context.Context, page storage.Page) ([]models.Event, error) {
	return findAll[models.Event](ctx, s.col(colEvents), bson.M{}, findOptions(page, soonestFirst))
}

func (s *Store) ListEventsForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Event, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"created_by": userID},
		bson.M{"participants": userID},
		bson.M{"invited": userID},
	}}
	return findAll[models.Event](ctx, s.col(colEvents), filter, findOptions(storage.Page{}, soonestFirst))
}

func (s *Store) ListEventInvites(ctx context.Context, userID primitive.ObjectID) ([]models.Event, error) {
	return findAll[models.Event](ctx, s.col(colEvents), bson.M{"invited": userID}, findOptions(storage.Page{}, soonestFirst))
}

func (s *Store) UpdateEventMembership(ctx context.Context, id primitive.ObjectID, change models.MembershipChange) (*models.Event, error) {
	return findOneAndUpdate[models.Event](ctx, s.col(colEvents), bson.M{"_id": id}, membershipUpdate(change))
}

func (s *Store) DeleteEvent(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, s.col(colEvents), id)
}

// Projects

func (s *Store) CreateProject(ctx context.Context, p *models.Project) error {
	now := time.Now().UTC()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	p.CreatedAt, p.UpdatedAt = now, now
	if p.Collaborators == nil {
		p.Collaborators = []primitive.ObjectID{}
	}
	if p.Invited == nil {
		p.Invited = []primitive.ObjectID{}
	}
	_, err := s.col(colProjects).InsertOne(ctx, p)
	return mapErr(err)
}

func (s *Store) GetProject(ctx context.Context, id primitive.ObjectID) (*models.Project, error) {
	return findOne[models.Project](ctx, s.col(colProjects), bson.M{"_id": id})
}

func (s *Store) ListProjectsForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Project, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"owner": userID},
		bson.M{"collaborators": userID},
		bson.M{"invited": userID},
	}}
	return findAll[models.Project](ctx, s.col(colProjects), filter, findOptions(storage.Page{}, newestFirst))
}

func (s *Store) UpdateProject(ctx context.Context, id primitive.ObjectID, title, description string) (*models.Project, error) {
	update := bson.M{"$set": bson.M{"title": title, "description": description, "updated_at": time.Now().UTC()}}
	return findOneAndUpdate[models.Project](ctx, s.col(colProjects), bson.M{"_id": id}, update)
}

func (s *Store) UpdateProjectMembership(ctx context.Context, id primitive.ObjectID, change models.MembershipChange) (*models.Project, error) {
	update := membershipUpdate(change)
	update["$set"] = bson.M{"updated_at": time.Now().UTC()}
	return findOneAndUpdate[models.Project](ctx, s.col(colProjects), bson.M{"_id": id}, update)
}

func (s *Store) DeleteProject(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, s.col(colProjects), id)
}
