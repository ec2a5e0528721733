/*
 * Copyright 2021 National Library of Norway.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *       http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

/*
Package crawldoc reads, creates and inspects crawled document records.

# Document records

A document record holds one captured transaction from a web crawl. It starts with the magic line
"HDFSWriter/0.2\r\n" followed by a block of "Label: value" fields terminated by an empty line. If the URL field
has the scheme http, the raw HTTP request follows, ending with an empty line. The rest of the record is the
raw response.

When records are stored in a stream, each record is prefixed with its length as a four byte big-endian integer.

# Parse document records

A [Document] is created with [NewDocument] and loaded with [Document.Load] or [Document.ReadFrame]. A Document
keeps a scratch buffer which is reused between loads, so one Document can parse any number of records.
Loading a record also parses the HTTP response: status code, content type, charset and the start of the body.
If the response headers lack a content type or charset, the start of the body is sniffed for an XML
declaration or a meta element.

The [DocFileReader] is used to read files of framed records. It is initialized with [NewDocFileReader].

# Create document records

The [DocumentBuilder] is used to create new records. It is initialized with [NewDocumentBuilder].

The [DocFileWriter] is used to write files of framed records. It is initialized with [NewDocFileWriter].

# Links

The [LinkExtractor] finds the outbound links of an HTML response without building a document tree.
*/
package crawldoc
