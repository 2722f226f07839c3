// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package client

import (
	"net/url"
	"strconv"
	"strings"
)

// Collection represents a collection of a particular resource, for example
// /real-owners or /real-owners/properties
type Collection struct {
	client     Client
	path       string
	parameters []string
}

// Collection returns a new collection client for the resource at path
func (c Client) Collection(path string) Collection {
	return Collection{
		client: c,
		path:   "/" + strings.Trim(path, "/"),
	}
}

// WithParameter returns a new collection client with a URL parameter added.
func (r Collection) WithParameter(key string, value string) Collection {
	parameter := url.QueryEscape(key) + "=" + url.QueryEscape(value)
	return Collection{
		client: r.client,
		path:   r.path,
		// we want a true copy to avoid side effects
		parameters: append(append([]string{}, r.parameters...), parameter),
	}
}

// WithIDParameter adds the URL parameter key=id, unless id is zero
func (r Collection) WithIDParameter(key string, id int64) Collection {
	if id == 0 {
		return r
	}
	return r.WithParameter(key, strconv.FormatInt(id, 10))
}

// CollectionPath returns the created path for the collection plus optional query strings
func (r Collection) CollectionPath() string {
	if len(r.parameters) > 0 {
		return r.path + "?" + strings.Join(r.parameters, "&")
	}
	return r.path
}

// List reads all items of the collection into result
//
// The operation corresponds to a GET request.
func (r Collection) List(result interface{}) (int, error) {
	return r.client.Get(r.CollectionPath(), result)
}

// Create creates a new item.
//
// The operation corresponds to a POST request.
//
// body can also be a []byte, result can also be raw *[]byte.
// result can be nil.
func (r Collection) Create(body interface{}, result interface{}) (int, error) {
	return r.client.Post(r.CollectionPath(), body, result)
}

// CreateMultipart creates a new item from a multipart form
func (r Collection) CreateMultipart(form Multipart, result interface{}) (int, error) {
	return r.client.PostMultipart(r.CollectionPath(), form, result)
}

// Item represents a single item in a collection
type Item struct {
	col Collection
	id  int64
}

// Item gets an item from a collection
func (r Collection) Item(id int64) Item {
	return Item{col: r, id: id}
}

// Path returns the created path for this item
func (r Item) Path() string {
	return r.col.path + "/" + strconv.FormatInt(r.id, 10)
}

// Read reads the item into result
//
// The operation corresponds to a GET request.
func (r Item) Read(result interface{}) (int, error) {
	return r.col.client.Get(r.Path(), result)
}

// Update replaces the item
//
// The operation corresponds to a PUT request.
func (r Item) Update(body interface{}, result interface{}) (int, error) {
	return r.col.client.Put(r.Path(), body, result)
}

// UpdateMultipart replaces the item from a multipart form
func (r Item) UpdateMultipart(form Multipart, result interface{}) (int, error) {
	return r.col.client.PutMultipart(r.Path(), form, result)
}

// Delete deletes the item
//
// The operation corresponds to a DELETE request.
func (r Item) Delete() (int, error) {
	return r.col.client.Delete(r.Path())
}
