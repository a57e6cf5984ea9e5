// Package client provides a Go client for the usersearch HTTP API.
//
//	c, _ := client.New("http://localhost:8080", client.WithAPIKey(key))
//	res, _ := c.Search(ctx, "female users with pictures", client.SearchOptions{Limit: 20})
//	for _, u := range res.Users {
//	    fmt.Println(u.FullName)
//	}
//
// Failed calls return *APIError, which matches the package sentinels with
// errors.Is:
//
//	if errors.Is(err, client.ErrUnavailable) {
//	    // model or a dependency is down, retry later
//	}
package client
