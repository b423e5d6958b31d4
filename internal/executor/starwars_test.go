package executor

import (
	"context"

	schema "github.com/weftql/weft/internal/schema"
)

// The Star Wars fixture used across the boundary tests: Characters as an
// interface over Human and Droid, heroes per episode, friends as id lists.

type swCharacter struct {
	ID        string
	Name      string
	Friends   []string
	AppearsIn []string
	// Human
	HomePlanet string
	// Droid
	PrimaryFunction string
	Kind            string // "Human" or "Droid"
}

var swData = map[string]*swCharacter{
	"1000": {ID: "1000", Name: "Luke Skywalker", Friends: []string{"1002", "1003", "2000", "2001"}, AppearsIn: []string{"NEWHOPE", "EMPIRE", "JEDI"}, HomePlanet: "Tatooine", Kind: "Human"},
	"1001": {ID: "1001", Name: "Darth Vader", Friends: []string{"1004"}, AppearsIn: []string{"NEWHOPE", "EMPIRE", "JEDI"}, HomePlanet: "Tatooine", Kind: "Human"},
	"1002": {ID: "1002", Name: "Han Solo", Friends: []string{"1000", "1003", "2001"}, AppearsIn: []string{"NEWHOPE", "EMPIRE", "JEDI"}, Kind: "Human"},
	"1003": {ID: "1003", Name: "Leia Organa", Friends: []string{"1000", "1002", "2000", "2001"}, AppearsIn: []string{"NEWHOPE", "EMPIRE", "JEDI"}, HomePlanet: "Alderaan", Kind: "Human"},
	"1004": {ID: "1004", Name: "Wilhuff Tarkin", Friends: []string{"1001"}, AppearsIn: []string{"NEWHOPE"}, Kind: "Human"},
	"2000": {ID: "2000", Name: "C-3PO", Friends: []string{"1000", "1002", "1003", "2001"}, AppearsIn: []string{"NEWHOPE", "EMPIRE", "JEDI"}, PrimaryFunction: "Protocol", Kind: "Droid"},
	"2001": {ID: "2001", Name: "R2-D2", Friends: []string{"1000", "1002", "1003"}, AppearsIn: []string{"NEWHOPE", "EMPIRE", "JEDI"}, PrimaryFunction: "Astromech", Kind: "Droid"},
}

func swFriends(c *swCharacter) []any {
	out := make([]any, len(c.Friends))
	for i, id := range c.Friends {
		out[i] = swData[id]
	}
	return out
}

func newStarWarsSchema() *schema.Schema {
	s := schema.NewSchema("").SetQueryType("Query")
	s.AddType(newScalarType("String"))
	s.AddType(newScalarType("ID"))
	s.AddType(newScalarType("Boolean"))

	episode := schema.NewType("Episode", schema.TypeKindEnum, "")
	episode.AddEnumValue(schema.NewEnumValue("NEWHOPE", ""))
	episode.AddEnumValue(schema.NewEnumValue("EMPIRE", ""))
	episode.AddEnumValue(schema.NewEnumValue("JEDI", ""))
	s.AddType(episode)

	characterFields := func() []*schema.Field {
		return []*schema.Field{
			schema.NewField("id", "", schema.NonNullType(schema.NamedType("String"))),
			schema.NewField("name", "", schema.NamedType("String")),
			schema.NewField("friends", "", schema.ListType(schema.NamedType("Character"))),
			schema.NewField("appearsIn", "", schema.ListType(schema.NamedType("Episode"))),
		}
	}

	character := schema.NewType("Character", schema.TypeKindInterface, "")
	for _, f := range characterFields() {
		character.AddField(f)
	}
	character.SetResolveType(func(ctx context.Context, value any, info *schema.ResolveInfo) (any, error) {
		if c, ok := value.(*swCharacter); ok {
			return c.Kind, nil
		}
		return nil, nil
	})
	s.AddType(character)

	characterResolver := func(ctx context.Context, source any, args map[string]any, info *schema.ResolveInfo) (any, error) {
		c, ok := source.(*swCharacter)
		if !ok {
			return nil, nil
		}
		switch info.FieldName {
		case "id":
			return c.ID, nil
		case "name":
			return c.Name, nil
		case "friends":
			return swFriends(c), nil
		case "appearsIn":
			return c.AppearsIn, nil
		case "homePlanet":
			if c.HomePlanet == "" {
				return nil, nil
			}
			return c.HomePlanet, nil
		case "primaryFunction":
			return c.PrimaryFunction, nil
		}
		return nil, nil
	}

	human := schema.NewType("Human", schema.TypeKindObject, "").
		AddInterface("Character").
		SetResolveField(characterResolver)
	for _, f := range characterFields() {
		human.AddField(f)
	}
	human.AddField(schema.NewField("homePlanet", "", schema.NamedType("String")))
	s.AddType(human)

	droid := schema.NewType("Droid", schema.TypeKindObject, "").
		AddInterface("Character").
		SetResolveField(characterResolver)
	for _, f := range characterFields() {
		droid.AddField(f)
	}
	droid.AddField(schema.NewField("primaryFunction", "", schema.NamedType("String")))
	s.AddType(droid)

	byID := func(fallback string) schema.ResolveFn {
		return func(ctx context.Context, source any, args map[string]any, info *schema.ResolveInfo) (any, error) {
			id, _ := args["id"].(string)
			if id == "" {
				id = fallback
			}
			c := swData[id]
			if c == nil {
				return nil, nil
			}
			return c, nil
		}
	}

	query := schema.NewType("Query", schema.TypeKindObject, "")
	query.AddField(schema.NewField("hero", "", schema.NamedType("Character")).
		AddArgument(schema.NewInputValue("episode", "", schema.NamedType("Episode"))).
		SetResolve(func(ctx context.Context, source any, args map[string]any, info *schema.ResolveInfo) (any, error) {
			if ep, _ := args["episode"].(string); ep == "EMPIRE" {
				return swData["1000"], nil
			}
			return swData["2001"], nil
		}))
	query.AddField(schema.NewField("human", "", schema.NamedType("Human")).
		AddArgument(schema.NewInputValue("id", "", schema.NamedType("String"))).
		SetResolve(byID("1000")))
	query.AddField(schema.NewField("droid", "", schema.NamedType("Droid")).
		AddArgument(schema.NewInputValue("id", "", schema.NamedType("String"))).
		SetResolve(byID("2001")))
	s.AddType(query)

	return s
}
