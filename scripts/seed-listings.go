package main

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
)

const baseURL = "http://localhost:8080"

type listing struct {
	Title       string
	Description string
	Price       string
	Location    string
	Country     string
}

var sampleListings = []listing{
	{"Cozy Beachfront Cottage", "Fall asleep to the sound of ocean waves in this coastal getaway.", "150", "Malibu", "United States"},
	{"Modern Downtown Loft", "Urban apartment in the heart of the city, walking distance to everything.", "120", "Barcelona", "Spain"},
	{"Mountain View Cabin", "Rustic hideout with a panoramic valley view and hiking trails nearby.", "95", "Innsbruck", "Austria"},
	{"Historic Castle Suite", "Sleep like royalty in a restored medieval palace wing.", "300", "Edinburgh", "United Kingdom"},
	{"Poolside Villa", "Private swimming pool, outdoor kitchen and tropical garden.", "220", "Ubud", "Indonesia"},
	{"Lakeside Room with Wifi", "Quiet private bedroom, fast wireless internet, perfect for remote work.", "60", "Bled", "Slovenia"},
}

func newClient() (*http.Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &http.Client{Jar: jar}, nil
}

func signup(client *http.Client, username, email, password string) error {
	resp, err := client.PostForm(baseURL+"/signup", url.Values{
		"username": {username},
		"email":    {email},
		"password": {password},
	})
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("signup failed (%d)", resp.StatusCode)
	}
	return nil
}

func login(client *http.Client, username, password string) error {
	resp, err := client.PostForm(baseURL+"/login", url.Values{
		"username": {username},
		"password": {password},
	})
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("login failed (%d)", resp.StatusCode)
	}
	return nil
}

func createListing(client *http.Client, l listing) error {
	resp, err := client.PostForm(baseURL+"/listings", url.Values{
		"title":       {l.Title},
		"description": {l.Description},
		"price":       {l.Price},
		"location":    {l.Location},
		"country":     {l.Country},
	})
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("create listing failed (%d)", resp.StatusCode)
	}
	return nil
}

func main() {
	client, err := newClient()
	if err != nil {
		fmt.Printf("Failed to create client: %v\n", err)
		os.Exit(1)
	}

	username, password := "demohost", "wanderstay1"

	// Signup answers with a redirect either way; logging in afterwards works
	// for both a fresh account and one left over from a previous run.
	fmt.Printf("Registering %s...\n", username)
	if err := signup(client, username, username+"@example.com", password); err != nil {
		fmt.Printf("Signup request failed: %v\n", err)
		os.Exit(1)
	}
	if err := login(client, username, password); err != nil {
		fmt.Printf("Failed to authenticate: %v\n", err)
		os.Exit(1)
	}

	for _, l := range sampleListings {
		if err := createListing(client, l); err != nil {
			fmt.Printf("Failed to create %q: %v\n", l.Title, err)
			os.Exit(1)
		}
		fmt.Printf("Created %q (%s, %s)\n", l.Title, l.Location, l.Country)
	}

	fmt.Println("\nSeed complete!")
	fmt.Printf("Browse: %s/listings\n", baseURL)
	fmt.Printf("Login:  %s / %s\n", username, password)
}
