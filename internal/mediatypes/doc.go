// Package mediatypes classifies uploaded media as audio or video and
// maps each kind to the container format used for exported clips.
//
// Classification prefers the declared MIME type and falls back to the
// file extension when the MIME type is missing or generic.
package mediatypes
