package services

import (
	"context"
	"time"

	"filevault/database"
	"filevault/models"
	"filevault/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type AuthService struct {
	userCollection *mongo.Collection
}

func NewAuthService() *AuthService {
	return &AuthService{
		userCollection: database.GetCollection(database.UsersCollection),
	}
}

// Register creates a new user account and issues an access token.
func (as *AuthService) Register(req *models.RegisterRequest) (*models.User, *utils.TokenPair, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := as.userCollection.CountDocuments(ctx, bson.M{"email": req.Email})
	if err != nil {
		return nil, nil, err
	}
	if count > 0 {
		return nil, nil, conflictError("email %s is already registered", req.Email)
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, nil, err
	}

	user := &models.User{
		ID:        primitive.NewObjectID(),
		Name:      req.Name,
		Email:     req.Email,
		Password:  hashed,
		Role:      "user",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if _, err := as.userCollection.InsertOne(ctx, user); err != nil {
		return nil, nil, err
	}

	tokens, err := utils.GenerateTokenPair(user.ID, user.Email, user.Name, user.Role)
	if err != nil {
		return nil, nil, err
	}

	return user, tokens, nil
}

// Login verifies credentials and issues an access token.
func (as *AuthService) Login(req *models.LoginRequest) (*models.User, *utils.TokenPair, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err := as.userCollection.FindOne(ctx, bson.M{"email": req.Email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil, forbiddenError("invalid email or password")
		}
		return nil, nil, err
	}

	if !utils.CheckPasswordHash(req.Password, user.Password) {
		return nil, nil, forbiddenError("invalid email or password")
	}

	tokens, err := utils.GenerateTokenPair(user.ID, user.Email, user.Name, user.Role)
	if err != nil {
		return nil, nil, err
	}

	return &user, tokens, nil
}

// GetUserByID loads a user by id.
func (as *AuthService) GetUserByID(userID primitive.ObjectID) (*models.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var user models.User
	err := as.userCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, notFoundError("user not found")
		}
		return nil, err
	}

	return &user, nil
}

// GetUserByEmail loads a user by email address.
func (as *AuthService) GetUserByEmail(email string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var user models.User
	err := as.userCollection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, notFoundError("user with email %s not found", email)
		}
		return nil, err
	}

	return &user, nil
}
